package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/lock"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

// pollOptions holds the flags for `fieldmon poll`.
type pollOptions struct {
	DeviceID int
	Count    int
	Publish  bool
	LockDir  string
}

var pollFlags pollOptions

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll one device and print each read",
	Long: `Poll a device once per second and print every read.

The first read happens immediately. Failed reads are printed and polling
continues. Stops after --count reads, or on Ctrl+C. Fails if another
fieldmon holds the serial port.

Examples:
  fieldmon poll --device 1
  fieldmon poll --device 2 --count 10
  fieldmon poll --device 1 --publish`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger.NewEnvLogger("[poll]")
		cfg, svc, err := loadServices(log)
		if err != nil {
			return err
		}
		opts := pollFlags
		opts.LockDir = cfg.Serial.LockDir
		return pollCommand(ctx, os.Stdout, svc, log, opts)
	},
}

func init() {
	pollCmd.Flags().IntVar(&pollFlags.DeviceID, "device", -1, "device id to poll (see 'fieldmon devices')")
	pollCmd.Flags().IntVar(&pollFlags.Count, "count", 0, "stop after this many reads (0 = until interrupted)")
	pollCmd.Flags().BoolVar(&pollFlags.Publish, "publish", false, "connect the MQTT uplink and publish every read")
	_ = pollCmd.MarkFlagRequired("device")
	rootCmd.AddCommand(pollCmd)
}

// PollOutput is one read in `poll --json`.
type PollOutput struct {
	SessionID string          `json:"session_id"`
	DeviceID  int             `json:"device_id"`
	Seq       int             `json:"seq"`
	Time      string          `json:"time"`
	Status    string          `json:"status"`
	Code      int             `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	Readings  []ReadingOutput `json:"readings,omitempty"`
}

// ReadingOutput is one register value in PollOutput.
type ReadingOutput struct {
	Address int     `json:"address"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
}

// pollCommand runs a polling session on a cooperative loop until opts.Count
// reads have been delivered or ctx is cancelled. Human output is printed as
// reads arrive; --json output is written as one envelope at the end.
func pollCommand(ctx context.Context, w io.Writer, svc *service.Services, log logger.Logger, opts pollOptions) error {
	if opts.Count < 0 {
		return errors.New(errors.ErrExec,
			"--count must not be negative",
			"Use 0 to poll until interrupted")
	}
	dev := svc.Devices.Load(opts.DeviceID)
	if err := dev.Err(errors.ErrDevice); err != nil {
		return err
	}

	bus, err := lock.TryAcquire(svc.System.SerialConfig().Data.Port, lock.Options{Dir: opts.LockDir, Command: "poll"})
	if err != nil {
		return err
	}
	defer func() { _ = bus.Release() }()

	if opts.Publish {
		if err := connectUplink(svc); err != nil {
			return err
		}
		defer svc.Mqtt.Disconnect()
	}

	loop := session.NewLoop()
	sess := session.New(svc.Modbus, loop, log)

	var (
		reads   int
		outputs []PollOutput
		failed  int
	)
	unsubscribe := sess.Subscribe(func(u session.Update) {
		if !u.Running {
			return
		}
		reads++
		if u.Status == session.StatusError {
			failed++
		} else if opts.Publish {
			if r := svc.Mqtt.PublishReadings(u.SessionID, u.DeviceID, u.Readings); !r.IsSuccess() {
				log.Warn("publish failed: %s (code %d)", r.Message, r.Code)
			}
		}

		if MachineMode() {
			outputs = append(outputs, pollOutput(u))
		} else {
			printUpdate(w, u)
		}
		if opts.Count > 0 && reads >= opts.Count {
			loop.Stop()
		}
	})
	defer unsubscribe()

	if !MachineMode() {
		fmt.Fprintf(w, "Polling %s (device %d, address %d) every %s\n",
			dev.Data.Name, dev.Data.ID, dev.Data.Address, session.PollInterval)
	}

	var startErr error
	loop.Post(func() {
		if err := sess.StartSession(opts.DeviceID); err != nil {
			startErr = err
			loop.Stop()
		}
	})
	runErr := loop.Run(ctx)
	sess.StopSession()

	if startErr != nil {
		return startErr
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}

	if MachineMode() {
		return WriteJSONSuccess(w, outputs)
	}
	summary := fmt.Sprintf("%d read(s), %d failed", reads, failed)
	if failed > 0 {
		fmt.Fprintln(w, ui.WarningStyle.Render(summary))
	} else {
		fmt.Fprintln(w, ui.MutedStyle.Render(summary))
	}
	return nil
}

func connectUplink(svc *service.Services) error {
	cfg := svc.Mqtt.LoadConfig().Data
	if !cfg.PublishReadings {
		cfg.PublishReadings = true
		if err := svc.Mqtt.SaveConfig(cfg).Err(errors.ErrMqtt); err != nil {
			return err
		}
	}
	if err := svc.Mqtt.Connect().Err(errors.ErrMqtt); err != nil {
		return errors.WrapWithCode(err, errors.ErrMqtt,
			fmt.Sprintf("Cannot connect to %s:%d", cfg.Broker, cfg.Port),
			"Check mqtt.broker in the config, or drop --publish")
	}
	return nil
}

func pollOutput(u session.Update) PollOutput {
	out := PollOutput{
		SessionID: u.SessionID,
		DeviceID:  u.DeviceID,
		Seq:       u.Seq,
		Time:      u.Time.Format(time.RFC3339),
		Status:    u.Status.String(),
		Code:      u.Code,
		Message:   u.Message,
	}
	for _, r := range u.Readings {
		out.Readings = append(out.Readings, ReadingOutput{Address: r.Address, Name: r.Name, Value: r.Value, Unit: r.Unit})
	}
	return out
}

func printUpdate(w io.Writer, u session.Update) {
	stamp := u.Time.Format("15:04:05")
	if u.Status == session.StatusError {
		fmt.Fprintln(w, ui.ErrorStyle.Render(fmt.Sprintf("%s %s #%d %s (code %d)",
			ui.SymbolFail, stamp, u.Seq, u.Message, u.Code)))
		return
	}

	fmt.Fprintln(w, ui.SuccessStyle.Render(fmt.Sprintf("%s %s #%d %d register(s)",
		ui.SymbolSuccess, stamp, u.Seq, len(u.Readings))))
	for _, r := range u.Readings {
		fmt.Fprintf(w, "    %5d  %-16s %10.2f %s\n", r.Address, r.Name, r.Value, r.Unit)
	}
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

var devicesScan bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List configured devices",
	Long: `List the configured Modbus devices and whether they answer.

Examples:
  fieldmon devices
  fieldmon devices --scan
  fieldmon devices --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := loadServices(logger.Noop())
		if err != nil {
			return err
		}
		return devicesCommand(os.Stdout, svc, devicesScan)
	},
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesScan, "scan", false, "also scan the bus for answering addresses")
	rootCmd.AddCommand(devicesCmd)
}

// DeviceOutput is one device in `devices --json`.
type DeviceOutput struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Address        int    `json:"address"`
	FunctionCode   int    `json:"function_code"`
	StartAddress   int    `json:"start_address"`
	RegisterCount  int    `json:"register_count"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	Online         bool   `json:"online"`
}

// DevicesOutput is the `devices --json` payload.
type DevicesOutput struct {
	Devices []DeviceOutput `json:"devices"`
	Scanned []int          `json:"scanned,omitempty"`
}

var deviceTableColumns = []ui.TableColumn{
	{Title: "ID", Width: 4},
	{Title: "Name", Width: 20},
	{Title: "Type", Width: 8},
	{Title: "Addr", Width: 5},
	{Title: "FC", Width: 3},
	{Title: "Regs", Width: 9},
	{Title: "Poll", Width: 7},
	{Title: "Status", Width: 9},
}

func devicesCommand(w io.Writer, svc *service.Services, scan bool) error {
	r := svc.Devices.List()
	if err := r.Err(errors.ErrDevice); err != nil {
		return err
	}

	out := DevicesOutput{Devices: make([]DeviceOutput, 0, len(r.Data))}
	for _, d := range r.Data {
		out.Devices = append(out.Devices, DeviceOutput{
			ID:             d.ID,
			Name:           d.Name,
			Type:           d.Type,
			Address:        d.Address,
			FunctionCode:   d.FunctionCode,
			StartAddress:   d.StartAddress,
			RegisterCount:  d.RegisterCount,
			PollIntervalMs: d.PollIntervalMs,
			Online:         d.Online,
		})
	}
	if scan {
		sr := svc.Devices.Scan()
		if err := sr.Err(errors.ErrDevice); err != nil {
			return err
		}
		out.Scanned = sr.Data
	}

	if MachineMode() {
		return WriteJSONSuccess(w, out)
	}

	if len(out.Devices) == 0 {
		fmt.Fprintln(w, ui.MutedStyle.Render("No devices configured. Add one from the console's device list."))
	} else {
		rows := make([][]string, 0, len(out.Devices))
		for _, d := range out.Devices {
			status := ui.SymbolOffline + " Offline"
			if d.Online {
				status = ui.SymbolOnline + " Online"
			}
			rows = append(rows, []string{
				strconv.Itoa(d.ID),
				d.Name,
				d.Type,
				strconv.Itoa(d.Address),
				strconv.Itoa(d.FunctionCode),
				fmt.Sprintf("%d+%d", d.StartAddress, d.RegisterCount),
				fmt.Sprintf("%dms", d.PollIntervalMs),
				status,
			})
		}
		fmt.Fprintln(w, ui.RenderSimpleTable(deviceTableColumns, rows))
	}

	if scan {
		if len(out.Scanned) == 0 {
			fmt.Fprintln(w, ui.WarningStyle.Render(ui.SymbolWarning+" Scan found no devices"))
		} else {
			fmt.Fprintln(w, ui.SuccessStyle.Render(fmt.Sprintf("%s Found %d device(s) at %s",
				ui.SymbolSuccess, len(out.Scanned), joinInts(out.Scanned))))
		}
	}
	return nil
}

func joinInts(vs []int) string {
	s := ""
	for i, v := range vs {
		if i > 0 {
			s += ", "
		}
		s += strconv.Itoa(v)
	}
	return s
}

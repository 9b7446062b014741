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

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "List alarms",
	Long: `List the alarm center entries, newest first.

The alarm registry lives in memory; ack and clear print the list as it
stands after the action.

Examples:
  fieldmon alarms
  fieldmon alarms ack 2
  fieldmon alarms clear 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := loadServices(logger.Noop())
		if err != nil {
			return err
		}
		return alarmsCommand(os.Stdout, svc)
	},
}

var alarmsAckCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledge an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alarmAction(os.Stdout, args[0], "Acknowledged", func(svc *service.Services, id int) service.Result[service.Empty] {
			return svc.Alarms.Ack(id)
		})
	},
}

var alarmsClearCmd = &cobra.Command{
	Use:   "clear <id>",
	Short: "Remove an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alarmAction(os.Stdout, args[0], "Cleared", func(svc *service.Services, id int) service.Result[service.Empty] {
			return svc.Alarms.Clear(id)
		})
	},
}

func init() {
	alarmsCmd.AddCommand(alarmsAckCmd)
	alarmsCmd.AddCommand(alarmsClearCmd)
	rootCmd.AddCommand(alarmsCmd)
}

// AlarmOutput is one alarm in `alarms --json`.
type AlarmOutput struct {
	ID      int    `json:"id"`
	Time    string `json:"time"`
	Device  string `json:"device"`
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Status  string `json:"status"`
	AckTime string `json:"ack_time,omitempty"`
}

var alarmTableColumns = []ui.TableColumn{
	{Title: "ID", Width: 4},
	{Title: "Time", Width: 19},
	{Title: "Device", Width: 18},
	{Title: "Level", Width: 8},
	{Title: "Message", Width: 28},
	{Title: "Status", Width: 13},
}

func alarmsCommand(w io.Writer, svc *service.Services) error {
	r := svc.Alarms.List()
	if err := r.Err(errors.ErrAlarm); err != nil {
		return err
	}

	out := make([]AlarmOutput, 0, len(r.Data))
	for _, a := range r.Data {
		out = append(out, AlarmOutput{
			ID:      a.ID,
			Time:    a.Time,
			Device:  a.Device,
			Type:    a.Type,
			Level:   a.Level,
			Message: a.Message,
			Status:  a.Status(),
			AckTime: a.AckTime,
		})
	}

	if MachineMode() {
		return WriteJSONSuccess(w, out)
	}

	if len(out) == 0 {
		fmt.Fprintln(w, ui.MutedStyle.Render("No alarms"))
		return nil
	}

	rows := make([][]string, 0, len(out))
	for _, a := range out {
		rows = append(rows, []string{strconv.Itoa(a.ID), a.Time, a.Device, a.Level, a.Message, a.Status})
	}
	fmt.Fprintln(w, ui.RenderSimpleTable(alarmTableColumns, rows))
	fmt.Fprintf(w, "%d active\n", svc.Alarms.ActiveCount())
	return nil
}

func alarmAction(w io.Writer, arg, verb string, act func(*service.Services, int) service.Result[service.Empty]) error {
	id, err := parseAlarmID(arg)
	if err != nil {
		return err
	}
	_, svc, err := loadServices(logger.Noop())
	if err != nil {
		return err
	}
	return applyAlarmAction(w, svc, id, verb, act)
}

func applyAlarmAction(w io.Writer, svc *service.Services, id int, verb string, act func(*service.Services, int) service.Result[service.Empty]) error {
	if err := act(svc, id).Err(errors.ErrAlarm); err != nil {
		return err
	}
	if MachineMode() {
		return WriteJSONSuccess(w, map[string]interface{}{"id": id, "action": verb})
	}
	fmt.Fprintln(w, ui.SuccessStyle.Render(fmt.Sprintf("%s %s alarm %d", ui.SymbolSuccess, verb, id)))
	return alarmsCommand(w, svc)
}

func parseAlarmID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, errors.New(errors.ErrAlarm,
			fmt.Sprintf("'%s' is not an alarm id", arg),
			"Run 'fieldmon alarms' to list ids")
	}
	return id, nil
}

// Package console is the operator-facing command surface: the Go-native
// stand-in for spec.md's "serial CLI" external collaborator. It only calls
// the public operations leadscrew.Controller and globalstate.State expose;
// it never reaches into controller internals.
//
// Commands are parsed with github.com/spf13/cobra (as calnex/cmd and
// autoroast's CLI do) and can be driven either over stdin/stdout or over a
// go.bug.st/serial port, grounded on sa53fw/mac.Mac's serial
// wiring.
package console

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/aliher1911/els/axis"
	"github.com/aliher1911/els/globalstate"
	"github.com/aliher1911/els/leadscrew"
)

// Console reads one command per line and applies it to ctrl/state.
type Console struct {
	ctrl     *leadscrew.Controller
	state    *globalstate.State
	leadAxis axis.Sensor

	rw   io.ReadWriter
	port serial.Port // non-nil only when attached to a serial port
}

// Open attaches the console to portName/baud when portName is non-empty, or
// to stdin/stdout otherwise. leadAxis backs the "sensor" command; it only
// supports "sensor set" when leadAxis also implements axis.Overridable.
func Open(ctrl *leadscrew.Controller, state *globalstate.State, leadAxis axis.Sensor, portName string, baud int) (*Console, error) {
	c := &Console{ctrl: ctrl, state: state, leadAxis: leadAxis}
	if portName == "" {
		c.rw = stdioReadWriter{}
		return c, nil
	}
	p, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("console: opening %s: %w", portName, err)
	}
	c.port = p
	c.rw = p
	return c, nil
}

func (c *Console) Close() {
	if c.port != nil {
		c.port.Close()
	}
}

// Run scans lines from the console's reader and executes each as a command
// until the reader is exhausted or returns an error. Intended to be run in
// its own goroutine alongside tickdriver.Run.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.rw)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(c.rw, "parse error: %v\n", err)
			continue
		}
		if out, err := c.exec(args); err != nil {
			fmt.Fprintf(c.rw, "error: %v\n", err)
		} else {
			fmt.Fprint(c.rw, out)
		}
	}
	return scanner.Err()
}

// exec builds a fresh cobra command tree per line (commands here are
// stateless aside from the closures over c) and runs it against args.
func (c *Console) exec(args []string) (string, error) {
	var buf bytes.Buffer

	root := c.rootCmd(&buf)
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func (c *Console) rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{Use: "els", SilenceUsage: true, SilenceErrors: true}

	ratio := &cobra.Command{Use: "ratio", Short: "get or set the leadscrew ratio"}
	ratio.AddCommand(&cobra.Command{
		Use: "get",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "ratio: %g\n", c.ctrl.Ratio())
			return nil
		},
	})
	ratio.AddCommand(&cobra.Command{
		Use:  "set <value>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				return fmt.Errorf("invalid ratio %q: %w", args[0], err)
			}
			c.ctrl.SetRatio(float32(r))
			log.Infof("console: ratio set to %g", r)
			fmt.Fprintf(out, "ratio set to %g\n", r)
			return nil
		},
	})
	root.AddCommand(ratio)

	root.AddCommand(c.stopCmd(out))

	root.AddCommand(&cobra.Command{
		Use: "position",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "current=%d expected=%d error=%d\n",
				c.ctrl.CurrentPosition(), c.ctrl.ExpectedPosition(), c.ctrl.PositionError())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "velocity",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "%g mm/s\n", c.ctrl.EstimatedVelocityInMillimetersPerSecond())
			return nil
		},
	})

	root.AddCommand(c.modeCmd(out))
	root.AddCommand(c.sensorCmd(out))

	return root
}

// sensorCmd exposes the lead axis's reading and, when leadAxis implements
// axis.Overridable, lets an operator force it — benchtop testing without a
// real encoder attached.
func (c *Console) sensorCmd(out io.Writer) *cobra.Command {
	sensor := &cobra.Command{Use: "sensor"}
	sensor.AddCommand(&cobra.Command{
		Use: "get",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "%d\n", c.leadAxis.CurrentPosition())
			return nil
		},
	})
	sensor.AddCommand(&cobra.Command{
		Use:  "set <position>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, ok := c.leadAxis.(axis.Overridable)
			if !ok {
				return fmt.Errorf("sensor override not supported: a real encoder is attached")
			}
			p, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[0], err)
			}
			override.Set(p)
			log.Infof("console: sensor override set to %d", p)
			fmt.Fprintf(out, "sensor set to %d\n", p)
			return nil
		},
	})
	return sensor
}

func (c *Console) stopCmd(out io.Writer) *cobra.Command {
	stop := &cobra.Command{Use: "stop"}
	for _, end := range []struct {
		name string
		end  leadscrew.StopEnd
	}{{"left", leadscrew.LeftEnd}, {"right", leadscrew.RightEnd}} {
		end := end
		endCmd := &cobra.Command{Use: end.name}
		endCmd.AddCommand(&cobra.Command{
			Use:                "set <position>",
			Args:               cobra.ExactArgs(1),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := strconv.ParseInt(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid position %q: %w", args[0], err)
				}
				c.ctrl.SetStopPosition(end.end, int32(p))
				fmt.Fprintf(out, "%s stop set to %d\n", end.name, p)
				return nil
			},
		})
		endCmd.AddCommand(&cobra.Command{
			Use: "unset",
			RunE: func(cmd *cobra.Command, args []string) error {
				c.ctrl.UnsetStopPosition(end.end)
				fmt.Fprintf(out, "%s stop unset\n", end.name)
				return nil
			},
		})
		endCmd.AddCommand(&cobra.Command{
			Use: "get",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintf(out, "%d\n", c.ctrl.StopPosition(end.end))
				return nil
			},
		})
		stop.AddCommand(endCmd)
	}
	return stop
}

func (c *Console) modeCmd(out io.Writer) *cobra.Command {
	mode := &cobra.Command{Use: "mode"}
	for _, m := range []struct {
		name string
		mode globalstate.MotionMode
	}{{"disabled", globalstate.Disabled}, {"jog", globalstate.Jog}, {"enabled", globalstate.Enabled}} {
		m := m
		mode.AddCommand(&cobra.Command{
			Use: m.name,
			RunE: func(cmd *cobra.Command, args []string) error {
				c.state.SetMotionMode(m.mode)
				log.Infof("console: motion mode -> %s", m.name)
				fmt.Fprintf(out, "mode set to %s\n", m.name)
				return nil
			},
		})
	}
	mode.AddCommand(&cobra.Command{
		Use: "get",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(out, "mode=%s sync=%s\n", c.state.MotionMode(), c.state.ThreadSyncState())
			return nil
		},
	})
	return mode
}

// stdioReadWriter glues os.Stdin/os.Stdout together as one io.ReadWriter.
type stdioReadWriter struct{}

func (stdioReadWriter) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/probe"
	"github.com/sadopc/lapse/internal/track"
	"github.com/sadopc/lapse/internal/tui"
)

var (
	trackLive     bool
	trackFocus    bool
	trackProject  string
	trackInterval int
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Start the tracking loop",
	Long: `Starts sampling the foreground window. With --live a dashboard shows
the current activity and today's totals; without it the loop runs until
interrupted (Ctrl+C), then prints today's summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := open()
		if err != nil {
			return err
		}
		defer st.Close()

		window, idler, notifier := probe.System()
		loop := track.New(st, cfg, window, idler, notifier)
		loop.SetInterval(time.Duration(trackInterval) * time.Second)
		loop.SetProject(trackProject)
		loop.SetFocusMode(trackFocus)

		if err := loop.Start(); err != nil {
			return err
		}

		if trackLive {
			p := tea.NewProgram(tui.New(st, cfg, loop), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				loop.Stop()
				return fmt.Errorf("dashboard: %w", err)
			}
		} else {
			fmt.Printf("Tracking every %ds (idle threshold %ds). Ctrl+C to stop.\n",
				trackInterval, cfg.IdleThresholdSeconds)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
		}

		loop.Stop()

		if unknown := loop.UnknownApps(); len(unknown) > 0 {
			fmt.Printf("\nUnclassified apps this session (%d):\n", len(unknown))
			for i, app := range unknown {
				if i == 10 {
					fmt.Printf("  ... and %d more\n", len(unknown)-10)
					break
				}
				fmt.Printf("  • %s\n", app)
			}
			fmt.Println("Add rules with: lapse config rule <pattern> <category>")
		}

		fmt.Println()
		printDay(st, cfg, time.Now().Format("2006-01-02"))
		log.Debug("tracker stopped, ledger saved")
		return nil
	},
}

func init() {
	trackCmd.Flags().BoolVar(&trackLive, "live", false, "show the live dashboard")
	trackCmd.Flags().BoolVar(&trackFocus, "focus", false, "start with focus mode on")
	trackCmd.Flags().StringVarP(&trackProject, "project", "p", "", "tag recorded time with a project")
	trackCmd.Flags().IntVar(&trackInterval, "interval", 5, "sampling period in seconds")
	rootCmd.AddCommand(trackCmd)
}

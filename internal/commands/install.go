package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/styles"
)

const serviceName = "mindflat"

// service describes the auto-start file for one platform.
type service struct {
	Path    string
	Content string
	Enable  [][]string
	Disable [][]string
}

// serviceFor returns the service definition for goos, or an error for an
// unsupported platform.
func serviceFor(goos, home, execPath string) (*service, error) {
	switch goos {
	case "darwin":
		path := filepath.Join(home, "Library", "LaunchAgents", "com."+serviceName+".plist")
		return &service{
			Path: path,
			Content: fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>com.%[2]s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%[1]s</string>
		<string>daemon</string>
		<string>--headless</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>/tmp/%[2]s.out.log</string>
	<key>StandardErrorPath</key>
	<string>/tmp/%[2]s.err.log</string>
</dict>
</plist>
`, execPath, serviceName),
			Enable:  [][]string{{"launchctl", "load", path}},
			Disable: [][]string{{"launchctl", "unload", path}},
		}, nil

	case "linux":
		unit := serviceName + ".service"
		return &service{
			Path: filepath.Join(home, ".config", "systemd", "user", unit),
			Content: fmt.Sprintf(`[Unit]
Description=mindflat - keep flattened MindNode documents up to date

[Service]
Type=simple
ExecStart=%s daemon --headless
Restart=always
RestartSec=10

[Install]
WantedBy=default.target
`, execPath),
			Enable: [][]string{
				{"systemctl", "--user", "daemon-reload"},
				{"systemctl", "--user", "enable", unit},
				{"systemctl", "--user", "start", unit},
			},
			Disable: [][]string{
				{"systemctl", "--user", "stop", unit},
				{"systemctl", "--user", "disable", unit},
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported operating system: %s (supported: darwin, linux)", goos)
}

func currentService() (*service, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return serviceFor(runtime.GOOS, home, execPath)
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Generate a service file that starts the daemon at login",
		RunE: func(*cobra.Command, []string) error {
			svc, err := currentService()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(svc.Path), 0755); err != nil {
				return fmt.Errorf("failed to create service directory: %w", err)
			}
			if err := os.WriteFile(svc.Path, []byte(svc.Content), 0644); err != nil {
				return fmt.Errorf("failed to write service file: %w", err)
			}

			fmt.Println(styles.Success.Render("✓ Service file created: " + svc.Path))
			fmt.Println()
			fmt.Println("To enable the service:")
			for _, c := range svc.Enable {
				fmt.Println(styles.Dim.Render("  " + strings.Join(c, " ")))
			}
			fmt.Println()
			fmt.Println("To disable the service:")
			for _, c := range svc.Disable {
				fmt.Println(styles.Dim.Render("  " + strings.Join(c, " ")))
			}
			return nil
		},
	}
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Stop the service and remove its file",
		RunE: func(*cobra.Command, []string) error {
			svc, err := currentService()
			if err != nil {
				return err
			}

			if _, err := os.Stat(svc.Path); os.IsNotExist(err) {
				fmt.Println(styles.Warning.Render("⚠ Service file not found: " + svc.Path))
				fmt.Println("Nothing to uninstall.")
				return nil
			}

			// the service may not be loaded; keep going
			for _, c := range svc.Disable {
				if err := exec.Command(c[0], c[1:]...).Run(); err != nil {
					fmt.Println(styles.Warning.Render(fmt.Sprintf("⚠ %s: %v", strings.Join(c, " "), err)))
				}
			}

			if err := os.Remove(svc.Path); err != nil {
				return fmt.Errorf("failed to remove service file: %w", err)
			}
			if runtime.GOOS == "linux" {
				if err := exec.Command("systemctl", "--user", "daemon-reload").Run(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to reload systemd daemon: %v\n", err)
				}
			}

			fmt.Println(styles.Success.Render("✓ Service file removed: " + svc.Path))
			return nil
		},
	}
}

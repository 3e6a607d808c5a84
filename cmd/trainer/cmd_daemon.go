package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/trainer/internal/config"
)

var statusClient = &http.Client{Timeout: 2 * time.Second}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trainer daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig()
			if err != nil {
				return err
			}
			addr := daemonAddr(cfg)

			if isRunning(addr) {
				fmt.Println(color.GreenString("✓"), "Daemon is already running")
				return nil
			}

			binary, err := findDaemonBinary()
			if err != nil {
				return fmt.Errorf("find daemon binary: %w", err)
			}

			proc := exec.Command(binary)
			proc.Dir = dir
			configureDaemonProcess(proc)

			if err := proc.Start(); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}

			fmt.Print("Starting daemon...")
			for range 30 {
				time.Sleep(100 * time.Millisecond)
				if isRunning(addr) {
					fmt.Println(color.GreenString(" ✓"))
					fmt.Printf("Daemon running at %s\n", addr)
					return nil
				}
				fmt.Print(".")
			}

			fmt.Println(color.RedString(" ✗"))
			return fmt.Errorf("daemon failed to start (check logs with 'trainer logs')")
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the trainer daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig()
			if err != nil {
				return err
			}
			addr := daemonAddr(cfg)

			if !isRunning(addr) {
				fmt.Println("Daemon is not running")
				return nil
			}

			pid, err := readPID(filepath.Join(dir, pidFile))
			if err != nil {
				return err
			}
			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find process: %w", err)
			}

			fmt.Print("Stopping daemon...")
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("send signal: %w", err)
			}

			for range 50 {
				time.Sleep(100 * time.Millisecond)
				if !isRunning(addr) {
					fmt.Println(color.GreenString(" ✓"))
					return nil
				}
				fmt.Print(".")
			}

			fmt.Println(color.RedString(" ✗"))
			return fmt.Errorf("daemon did not stop gracefully")
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig()
			if err != nil {
				return err
			}
			addr := daemonAddr(cfg)

			resp, err := statusClient.Get(addr + "/v1/status")
			if err != nil {
				fmt.Println("Status:    stopped")
				return nil
			}
			defer resp.Body.Close()

			status, err := decodeStatus(resp.Body)
			if err != nil {
				return err
			}

			fmt.Printf("Status:    %s\n", color.GreenString(status.Status))
			fmt.Printf("Version:   %s\n", status.Version)
			fmt.Printf("Uptime:    %s\n", status.Uptime)
			fmt.Printf("Storage:   %s\n", status.Storage)
			fmt.Printf("Exercises: %d\n", status.Exercises)
			fmt.Printf("Address:   %s\n", addr)

			if pid, err := readPID(filepath.Join(dir, pidFile)); err == nil {
				if ps, err := processStats(cmd.Context(), int32(pid)); err == nil {
					fmt.Printf("PID:       %d\n", ps.PID)
					fmt.Printf("Memory:    %s\n", formatBytes(ps.RSS))
					fmt.Printf("CPU:       %.1f%%\n", ps.CPU)
				}
			}
			return nil
		},
	}
}

type daemonStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Storage   string `json:"storage"`
	Exercises int    `json:"exercises"`
}

func decodeStatus(r io.Reader) (daemonStatus, error) {
	var status daemonStatus
	if err := json.NewDecoder(r).Decode(&status); err != nil {
		return daemonStatus{}, fmt.Errorf("parse status: %w", err)
	}
	return status, nil
}

func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.TrainerDir()
			if err != nil {
				return err
			}

			file, err := os.Open(filepath.Join(dir, "logs", "trainerd.log"))
			if os.IsNotExist(err) {
				fmt.Println("No log file found. Start the daemon first.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer file.Close()

			return tail(file, cmd.OutOrStdout(), 4096)
		},
	}
}

// tail copies the complete lines of the last n bytes of f to w
func tail(f *os.File, w io.Writer, n int64) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}

	offset := max(info.Size()-n, 0)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(f)
	if offset > 0 {
		// skip the partial first line
		_, _ = reader.ReadString('\n')
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}
	return scanner.Err()
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID: %w", err)
	}
	return pid, nil
}

// isRunning checks the daemon health endpoint
func isRunning(addr string) bool {
	resp, err := statusClient.Get(addr + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findDaemonBinary locates trainerd in PATH or next to this binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath("trainerd"); err == nil {
		return path, nil
	}

	if self, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(self), "trainerd")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	for _, path := range []string{"./trainerd", "./cmd/trainerd/trainerd"} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("trainerd binary not found (build with 'go build ./cmd/trainerd')")
}

package util

import (
	"os/exec"
	"runtime"
)

// Open 用系统默认程序打开文件或链接
// 支持 Windows 7/10/11, macOS, Linux
func Open(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	return cmd.Start()
}

// OpenWithFallback 主要方式失败时尝试备选程序
func OpenWithFallback(target string) error {
	err := Open(target)
	if err == nil {
		return nil
	}

	// 降级方案
	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", target).Start()
	case "linux":
		for _, opener := range []string{"gio", "libreoffice", "sensible-browser"} {
			args := []string{target}
			if opener == "gio" {
				args = []string{"open", target}
			}
			if err := exec.Command(opener, args...).Start(); err == nil {
				return nil
			}
		}
	}

	return err
}

//go:build windows

package limitdialog

import (
	"unsafe"

	"clickguardian/internal/core/gate"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"golang.org/x/sys/windows"
)

var (
	user32DLL         = windows.NewLazySystemDLL("user32.dll")
	procGetWindowRect = user32DLL.NewProc("GetWindowRect")
	procIsWindow      = user32DLL.NewProc("IsWindow")
)

func nativeHandle(window fyne.Window) uintptr {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return 0
	}

	var hwnd uintptr
	nativeWindow.RunNative(func(context any) {
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		}
	})
	return hwnd
}

func windowRect(hwnd uintptr) (gate.Rect, bool) {
	if hwnd == 0 {
		return gate.Rect{}, false
	}
	if valid, _, _ := procIsWindow.Call(hwnd); valid == 0 {
		return gate.Rect{}, false
	}
	var rect windows.Rect
	if result, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect))); result == 0 {
		return gate.Rect{}, false
	}
	return gate.Rect{
		Left:   int(rect.Left),
		Top:    int(rect.Top),
		Right:  int(rect.Right),
		Bottom: int(rect.Bottom),
	}, true
}

//go:build !windows

package limitdialog

import (
	"clickguardian/internal/core/gate"

	"fyne.io/fyne/v2"
)

func nativeHandle(fyne.Window) uintptr {
	return 0
}

func windowRect(uintptr) (gate.Rect, bool) {
	return gate.Rect{}, false
}

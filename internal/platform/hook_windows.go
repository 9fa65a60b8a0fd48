//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"clickguardian/internal/core/gate"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

const (
	whMouseLL     = 14
	wmQuit        = 0x0012
	wmLButtonDown = 0x0201
	wmRButtonDown = 0x0204
	wmMButtonDown = 0x0207
	wmXButtonDown = 0x020B
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

// windows.NewCallback slots are never freed, so the trampoline is created once.
var (
	callbackOnce sync.Once
	callbackPtr  uintptr
	activeHook   atomic.Pointer[windowsHook]
)

type msllHookStruct struct {
	X           int32
	Y           int32
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type nativeMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	X       int32
	Y       int32
	Private uint32
}

type windowsHook struct {
	mu       sync.Mutex
	logger   *zap.Logger
	decide   Decider
	threadID uint32
	done     chan struct{}
	running  bool
}

func newHook(logger *zap.Logger) Hook {
	return &windowsHook{logger: logger}
}

// Start installs WH_MOUSE_LL on a dedicated OS thread and returns once it is live.
func (hook *windowsHook) Start(decide Decider) error {
	hook.mu.Lock()
	defer hook.mu.Unlock()
	if hook.running {
		return nil
	}
	if !activeHook.CompareAndSwap(nil, hook) {
		return fmt.Errorf("%w: another hook is active", ErrHookSetup)
	}

	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(lowLevelMouseProc)
	})

	hook.decide = decide
	hook.done = make(chan struct{})
	ready := make(chan error, 1)
	go hook.loop(ready)
	if err := <-ready; err != nil {
		activeHook.CompareAndSwap(hook, nil)
		return err
	}
	hook.running = true
	hook.logger.Info("mouse hook installed", zap.Uint32("thread", hook.threadID))
	return nil
}

// Stop ends the message loop and removes the hook. Safe to call more than once.
func (hook *windowsHook) Stop() error {
	hook.mu.Lock()
	defer hook.mu.Unlock()
	if !hook.running {
		return nil
	}
	hook.running = false

	result, _, err := procPostThreadMessageW.Call(uintptr(hook.threadID), wmQuit, 0, 0)
	if result == 0 {
		return fmt.Errorf("post quit to hook thread: %w", err)
	}
	<-hook.done
	hook.logger.Info("mouse hook removed")
	return nil
}

func (hook *windowsHook) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(hook.done)

	hook.threadID = windows.GetCurrentThreadId()

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		ready <- fmt.Errorf("%w: module handle: %v", ErrHookSetup, err)
		return
	}
	handle, _, err := procSetWindowsHookExW.Call(whMouseLL, callbackPtr, uintptr(module), 0)
	if handle == 0 {
		ready <- fmt.Errorf("%w: %v", ErrHookSetup, err)
		return
	}
	ready <- nil

	var message nativeMsg
	for {
		result, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&message)), 0, 0, 0)
		if int32(result) <= 0 {
			break
		}
	}

	if result, _, err := procUnhookWindowsHookEx.Call(handle); result == 0 {
		hook.logger.Error("unhook mouse", zap.Error(err))
	}
	activeHook.CompareAndSwap(hook, nil)
}

func lowLevelMouseProc(nCode, wParam, lParam uintptr) (result uintptr) {
	// A panic here would leave the pointer frozen, so fall through to the next hook.
	defer func() {
		if recovered := recover(); recovered != nil {
			if hook := activeHook.Load(); hook != nil {
				hook.logger.Error("mouse hook panic", zap.Any("panic", recovered))
			}
			result = callNextHook(nCode, wParam, lParam)
		}
	}()

	hook := activeHook.Load()
	if hook == nil || int32(nCode) < 0 {
		return callNextHook(nCode, wParam, lParam)
	}
	button, ok := buttonFor(wParam)
	if !ok {
		return callNextHook(nCode, wParam, lParam)
	}

	info := (*msllHookStruct)(unsafe.Pointer(lParam))
	click := gate.Click{
		DeviceTime: info.Time,
		X:          int(info.X),
		Y:          int(info.Y),
		Button:     button,
	}
	if hook.decide(click) == gate.Deny {
		return 1
	}
	return callNextHook(nCode, wParam, lParam)
}

func callNextHook(nCode, wParam, lParam uintptr) uintptr {
	result, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return result
}

func buttonFor(message uintptr) (gate.Button, bool) {
	switch message {
	case wmLButtonDown:
		return gate.ButtonLeft, true
	case wmRButtonDown:
		return gate.ButtonRight, true
	case wmMButtonDown:
		return gate.ButtonMiddle, true
	case wmXButtonDown:
		return gate.ButtonX, true
	default:
		return 0, false
	}
}

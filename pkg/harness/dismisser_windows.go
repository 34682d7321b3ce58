//go:build windows
// +build windows

package harness

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const wmClose = 0x0010

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW  = user32.NewProc("FindWindowW")
	procPostMessageW = user32.NewProc("PostMessageW")
)

// win32Dismisser finds windows by title with FindWindowW and closes them by posting WM_CLOSE
type win32Dismisser struct{}

// NewPlatformDismisser returns the window dismisser of the running platform
func NewPlatformDismisser() WindowDismisser {
	if err := user32.Load(); err != nil {
		return NoopDismisser{}
	}
	return win32Dismisser{}
}

func (win32Dismisser) Supported() bool { return true }

func (win32Dismisser) Dismiss(title string) (bool, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return false, err
	}

	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return false, nil
	}

	ok, _, callErr := procPostMessageW.Call(hwnd, wmClose, 0, 0)
	if ok == 0 {
		return true, callErr
	}

	return true, nil
}

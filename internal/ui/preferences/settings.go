package preferences

import (
	"strconv"
	"strings"
	"time"

	"clickguardian/internal/core/model"
)

// Form holds the editable text and toggle values shown in the settings window.
type Form struct {
	ClickLimit        string
	UnlockMillis      string
	GracePeriod       string
	BlockClicks       bool
	ShowTrayIcon      bool
	RegisterForReboot bool
}

// FormFromConfig renders config into form values.
func FormFromConfig(config model.Config) Form {
	return Form{
		ClickLimit:        strconv.Itoa(config.ClickLimit),
		UnlockMillis:      strconv.FormatInt(config.UnlockDuration.Milliseconds(), 10),
		GracePeriod:       strconv.Itoa(config.GracePeriod),
		BlockClicks:       config.BlockClicks,
		ShowTrayIcon:      config.ShowTrayIcon,
		RegisterForReboot: config.RegisterForReboot,
	}
}

// Apply returns base with the form values applied. Unparseable fields keep the
// base value; out-of-range numbers are clamped.
func (form Form) Apply(base model.Config) model.Config {
	config := base
	if limit, ok := parseInt(form.ClickLimit); ok {
		config.ClickLimit = limit
	}
	if millis, ok := parseInt(form.UnlockMillis); ok {
		// The unlock field steps in 100 ms increments.
		millis = (millis + 50) / 100 * 100
		config.UnlockDuration = time.Duration(millis) * time.Millisecond
	}
	if grace, ok := parseInt(form.GracePeriod); ok {
		config.GracePeriod = grace
	}
	config.BlockClicks = form.BlockClicks
	config.ShowTrayIcon = form.ShowTrayIcon
	config.RegisterForReboot = form.RegisterForReboot
	return config.Normalized()
}

func parseInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return parsed, true
}

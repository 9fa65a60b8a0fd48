package preferences

import (
	"testing"
	"time"

	"clickguardian/internal/core/model"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormRoundTrip(t *testing.T) {
	config := model.DefaultConfig()
	config.GracePeriod = 2
	config.RegisterForReboot = true

	base := model.DefaultConfig()
	assert.Equal(t, config, FormFromConfig(config).Apply(base))
}

func TestApplyClampsAndRounds(t *testing.T) {
	base := model.DefaultConfig()
	form := FormFromConfig(base)
	form.ClickLimit = "20000"
	form.UnlockMillis = "1249"
	form.GracePeriod = "-3"

	config := form.Apply(base)
	assert.Equal(t, model.MaxClickLimit, config.ClickLimit)
	assert.Equal(t, 1200*time.Millisecond, config.UnlockDuration)
	assert.Equal(t, 0, config.GracePeriod)
}

func TestApplyKeepsBaseOnGarbage(t *testing.T) {
	base := model.DefaultConfig()
	base.ShowExitButton = false
	base.RedirectOnUnlock = true
	form := FormFromConfig(base)
	form.ClickLimit = "lots"
	form.UnlockMillis = ""

	config := form.Apply(base)
	assert.Equal(t, base.ClickLimit, config.ClickLimit)
	assert.Equal(t, base.UnlockDuration, config.UnlockDuration)
	assert.False(t, config.ShowExitButton)
	assert.True(t, config.RedirectOnUnlock)
}

func TestRangeValidator(t *testing.T) {
	validate := rangeValidator(1, 10)
	assert.NoError(t, validate(" 5 "))
	assert.Error(t, validate("0"))
	assert.Error(t, validate("eleven"))
}

func TestWindowSaveProducesSnapshot(t *testing.T) {
	app := test.NewTempApp(t)
	var saved []model.Config
	prefs := New(app, model.DefaultConfig(), func(config model.Config) {
		saved = append(saved, config)
	})

	prefs.clickLimit.SetText("50")
	prefs.blockClicks.SetChecked(false)
	prefs.handleSave()

	require.Len(t, saved, 1)
	assert.Equal(t, 50, saved[0].ClickLimit)
	assert.False(t, saved[0].BlockClicks)
	assert.Equal(t, "50", prefs.clickLimit.Text)
}

// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package lights

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/droidleds/binder"
	"github.com/we-are-mono/droidleds/system"
	"github.com/we-are-mono/droidleds/types"
)

// sysfsTree builds fake LED directories under a temporary sysfs root
type sysfsTree struct {
	t    *testing.T
	root string
}

func newSysfsTree(t *testing.T) *sysfsTree {
	return &sysfsTree{t: t, root: t.TempDir()}
}

func (s *sysfsTree) led(rel string, attrs map[string]string) string {
	s.t.Helper()
	dir := filepath.Join(s.root, rel)
	require.NoError(s.t, os.MkdirAll(dir, 0755))
	for name, value := range attrs {
		require.NoError(s.t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0644))
	}
	return dir
}

func (s *sysfsTree) read(rel, attr string) string {
	s.t.Helper()
	data, err := os.ReadFile(filepath.Join(s.root, rel, attr))
	require.NoError(s.t, err)
	return strings.TrimSpace(string(data))
}

func (s *sysfsTree) probe() (*Devices, *system.MockDeviceManager) {
	dm := system.NewMockDeviceManager(s.root)
	return NewProber(dm).Probe(), dm
}

func TestProbeKnownPathWins(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "0", "max_brightness": "255"})
	tree.led("class/backlight/acpi_video0", map[string]string{"brightness": "0", "max_brightness": "10", "type": "firmware"})

	devices, dm := tree.probe()
	require.NotNil(t, devices.Backlight)
	assert.Equal(t, filepath.Join(tree.root, "class/leds/lcd-backlight"), devices.Backlight.Path())
	assert.Equal(t, 0, dm.QueryBySubsystemCalls)
}

func TestProbeSecondKnownPath(t *testing.T) {
	tree := newSysfsTree(t)
	// Directory without a brightness attribute is skipped
	tree.led("class/leds/lcd-backlight", map[string]string{"max_brightness": "255"})
	tree.led("class/backlight/panel0-backlight", map[string]string{"brightness": "0", "max_brightness": "4095"})

	devices, dm := tree.probe()
	require.NotNil(t, devices.Backlight)
	assert.Equal(t, uint32(4095), devices.Backlight.Max)
	assert.Equal(t, 0, dm.QueryBySubsystemCalls)
}

func TestProbeSubsystemFallback(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/backlight/a-unknown", map[string]string{"brightness": "0", "type": "unknown"})
	tree.led("class/backlight/b-nobrightness", map[string]string{"type": "raw"})
	tree.led("class/backlight/c-platform", map[string]string{"brightness": "0", "max_brightness": "100", "type": "platform"})
	tree.led("class/backlight/d-firmware", map[string]string{"brightness": "0", "type": "firmware"})

	devices, dm := tree.probe()
	require.NotNil(t, devices.Backlight)
	assert.Equal(t, "c-platform", devices.Backlight.Device.Name())
	assert.Equal(t, 1, dm.QueryBySubsystemCalls)
}

func TestProbeNothing(t *testing.T) {
	tree := newSysfsTree(t)

	devices, _ := tree.probe()
	assert.Nil(t, devices.Backlight)
	assert.False(t, devices.HasRGB())
	assert.Empty(t, NewWithDevices(devices).SupportedTypes())
}

func TestProbeRGBChannelsIndependent(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/green", map[string]string{"brightness": "0", "max_brightness": "255", "blink": "0"})
	tree.led("class/leds/blue", map[string]string{"max_brightness": "255"})

	devices, _ := tree.probe()
	assert.Nil(t, devices.Red)
	require.NotNil(t, devices.Green)
	assert.Nil(t, devices.Blue)
	assert.Equal(t, BlinkBlink, devices.Green.Blink)

	assert.Equal(t, []types.LightType{types.LightTypeNotifications}, NewWithDevices(devices).SupportedTypes())
}

func TestBlinkCapabilityPreference(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/red", map[string]string{"brightness": "0", "breath": "0", "blink": "0"})

	devices, _ := tree.probe()
	require.NotNil(t, devices.Red)
	assert.Equal(t, BlinkBreath, devices.Red.Blink)
	assert.Equal(t, "breath", devices.Red.Blink.String())
}

func TestLuma(t *testing.T) {
	assert.Equal(t, uint8(255), Luma(0xFFFFFF))
	assert.Equal(t, uint8(255), Luma(0xFFFFFFFF))
	assert.Equal(t, uint8(0), Luma(0x000000))
	assert.Equal(t, uint8(76), Luma(0xFF0000))
	assert.Equal(t, uint8(149), Luma(0x00FF00))
	assert.Equal(t, uint8(28), Luma(0x0000FF))
	assert.Equal(t, uint8(128), Luma(0x808080))
}

func TestScaleToMax(t *testing.T) {
	assert.Equal(t, uint32(1000), ScaleToMax(255, 1000))
	assert.Equal(t, uint32(501), ScaleToMax(128, 1000))
	assert.Equal(t, uint32(0), ScaleToMax(0, 1000))
	assert.Equal(t, uint32(0), ScaleToMax(255, 0))
}

func TestSetBacklight(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "0", "max_brightness": "1000"})

	devices, _ := tree.probe()
	l := NewWithDevices(devices)

	assert.Equal(t, []types.LightType{types.LightTypeBacklight}, l.SupportedTypes())

	require.True(t, l.Set(0xFF808080, types.LightTypeBacklight, types.FlashHardware, types.BrightnessUser, 0, 0))
	assert.Equal(t, "501", tree.read("class/leds/lcd-backlight", "brightness"))

	require.True(t, l.Set(0xFFFFFFFF, types.LightTypeBacklight, types.FlashHardware, types.BrightnessUser, 0, 0))
	assert.Equal(t, "1000", tree.read("class/leds/lcd-backlight", "brightness"))
}

func TestSetNotification(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/red", map[string]string{"brightness": "0", "max_brightness": "255", "breath": "0"})
	tree.led("class/leds/green", map[string]string{"brightness": "0", "max_brightness": "100", "blink": "1"})
	tree.led("class/leds/blue", map[string]string{"brightness": "9", "max_brightness": "255"})

	devices, _ := tree.probe()
	l := NewWithDevices(devices)

	require.True(t, l.Set(0x00FF0000, types.LightTypeNotifications, types.FlashNone, types.BrightnessUser, 0, 0))
	assert.Equal(t, "255", tree.read("class/leds/red", "brightness"))
	assert.Equal(t, "1", tree.read("class/leds/red", "breath"))
	assert.Equal(t, "0", tree.read("class/leds/green", "brightness"))
	assert.Equal(t, "0", tree.read("class/leds/green", "blink"))
	assert.Equal(t, "0", tree.read("class/leds/blue", "brightness"))

	// Blue has no blink attribute; blink is a successful no-op
	assert.NoFileExists(t, filepath.Join(tree.root, "class/leds/blue/blink"))
}

func TestSetNotificationAnyChannelSucceeds(t *testing.T) {
	tree := newSysfsTree(t)
	red := tree.led("class/leds/red", map[string]string{"max_brightness": "255"})
	// A directory in place of the attribute makes every write fail
	require.NoError(t, os.MkdirAll(filepath.Join(red, "brightness"), 0755))
	tree.led("class/leds/green", map[string]string{"brightness": "0", "max_brightness": "255"})

	devices, _ := tree.probe()
	require.NotNil(t, devices.Red)
	l := NewWithDevices(devices)

	assert.True(t, l.Set(0x00FFFF00, types.LightTypeNotifications, types.FlashNone, types.BrightnessUser, 0, 0))
	assert.Equal(t, "255", tree.read("class/leds/green", "brightness"))
}

func TestSetNotificationAllChannelsFail(t *testing.T) {
	tree := newSysfsTree(t)
	red := tree.led("class/leds/red", map[string]string{"max_brightness": "255"})
	require.NoError(t, os.MkdirAll(filepath.Join(red, "brightness"), 0755))

	devices, _ := tree.probe()
	assert.False(t, NewWithDevices(devices).Set(0xFF0000, types.LightTypeNotifications, types.FlashNone, types.BrightnessUser, 0, 0))
}

func TestSetBacklightReadOnlyAttribute(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}
	tree := newSysfsTree(t)
	dir := tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "7", "max_brightness": "255"})
	require.NoError(t, os.Chmod(filepath.Join(dir, "brightness"), 0444))

	devices, _ := tree.probe()
	require.NotNil(t, devices.Backlight)

	assert.False(t, devices.Backlight.SetBrightness(200))
	assert.Equal(t, "7", tree.read("class/leds/lcd-backlight", "brightness"))
}

func TestSetUnsupported(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/red", map[string]string{"brightness": "3", "max_brightness": "255"})

	devices, _ := tree.probe()
	l := NewWithDevices(devices)

	assert.False(t, l.Set(0xFFFFFF, types.LightTypeKeyboard, types.FlashNone, types.BrightnessUser, 0, 0))
	assert.False(t, l.Set(0xFFFFFF, types.LightTypeBacklight, types.FlashNone, types.BrightnessUser, 0, 0))
	assert.Equal(t, "3", tree.read("class/leds/red", "brightness"))
}

func setLightRequest(t *testing.T, lt types.LightType, state types.LightState) *binder.RemoteRequest {
	t.Helper()
	body, err := state.MarshalBinary()
	require.NoError(t, err)

	w := binder.NewWriter()
	w.WriteInt32(int32(lt))
	w.WriteBuffer(body)
	return &binder.RemoteRequest{Code: types.VectorSetLight, Data: w.Bytes()}
}

func readWords(t *testing.T, w *binder.Writer, n int) []int32 {
	t.Helper()
	r := binder.NewReader(w.Bytes())
	words := make([]int32, n)
	for i := range words {
		v, err := r.ReadInt32()
		require.NoError(t, err)
		words[i] = v
	}
	assert.Zero(t, r.Remaining())
	return words
}

func TestReplySetLight(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "0", "max_brightness": "255"})
	devices, _ := tree.probe()
	l := NewWithDevices(devices)

	reply, status := l.Reply(setLightRequest(t, types.LightTypeBacklight, types.LightState{Color: 0xFFFFFFFF}))
	assert.Equal(t, binder.StatusOK, status)
	assert.Equal(t, []int32{binder.StatusOK, int32(types.LightStatusSuccess)}, readWords(t, reply, 2))
	assert.Equal(t, "255", tree.read("class/leds/lcd-backlight", "brightness"))

	reply, status = l.Reply(setLightRequest(t, types.LightTypeWifi, types.LightState{Color: 0xFF}))
	assert.Equal(t, binder.StatusOK, status)
	assert.Equal(t, []int32{binder.StatusOK, int32(types.LightStatusNotSupported)}, readWords(t, reply, 2))
}

func TestReplySetLightTruncated(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "7", "max_brightness": "255"})
	devices, _ := tree.probe()
	l := NewWithDevices(devices)

	w := binder.NewWriter()
	w.WriteInt32(int32(types.LightTypeBacklight))
	w.WriteBuffer(make([]byte, 12))

	reply, status := l.Reply(&binder.RemoteRequest{Code: types.VectorSetLight, Data: w.Bytes()})
	assert.Equal(t, binder.StatusOK, status)
	assert.Equal(t, []int32{binder.StatusFailed}, readWords(t, reply, 1))
	assert.Equal(t, "7", tree.read("class/leds/lcd-backlight", "brightness"))

	// Type word only
	w = binder.NewWriter()
	w.WriteInt32(int32(types.LightTypeBacklight))
	reply, _ = l.Reply(&binder.RemoteRequest{Code: types.VectorSetLight, Data: w.Bytes()})
	assert.Equal(t, []int32{binder.StatusFailed}, readWords(t, reply, 1))
}

func TestReplyGetSupportedTypes(t *testing.T) {
	tree := newSysfsTree(t)
	tree.led("class/leds/lcd-backlight", map[string]string{"brightness": "0"})
	tree.led("class/leds/blue", map[string]string{"brightness": "0"})
	devices, _ := tree.probe()

	reply, status := NewWithDevices(devices).Reply(&binder.RemoteRequest{Code: types.VectorGetSupportedTypes})
	require.Equal(t, binder.StatusOK, status)

	r := binder.NewReader(reply.Bytes())
	first, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, binder.StatusOK, first)

	ordinals, err := r.ReadInt32Vector()
	require.NoError(t, err)
	assert.Equal(t, []int32{int32(types.LightTypeBacklight), int32(types.LightTypeNotifications)}, ordinals)
}

func TestReplyUnknownCode(t *testing.T) {
	reply, status := NewWithDevices(nil).Reply(&binder.RemoteRequest{Code: 99})
	assert.Equal(t, binder.StatusUnknownTransaction, status)
	assert.Equal(t, []int32{binder.StatusUnknownTransaction}, readWords(t, reply, 1))
}

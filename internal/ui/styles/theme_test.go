// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestThemeModes(t *testing.T) {
	th := NewTheme("dark")
	if !th.IsDark || th.Mode != ModeDark {
		t.Errorf("dark theme: IsDark=%v Mode=%q", th.IsDark, th.Mode)
	}

	th.Apply("LIGHT")
	if th.IsDark || th.Mode != ModeLight {
		t.Errorf("light theme: IsDark=%v Mode=%q", th.IsDark, th.Mode)
	}

	th.Apply("sepia")
	if th.Mode != ModeAuto {
		t.Errorf("unknown mode should fall back to auto, got %q", th.Mode)
	}
}

func TestLayoutMode(t *testing.T) {
	th := NewTheme("dark")
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}
	for _, tc := range tests {
		th.SetSize(tc.width, 24)
		if got := th.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: got %v, want %v", tc.width, got, tc.want)
		}
	}
}

package models

import "testing"

func TestParseSetting(t *testing.T) {
	tests := []struct {
		in      string
		want    Setting
		wantErr bool
	}{
		{"Low", SettingLow, false},
		{"Medium", SettingMedium, false},
		{"High", SettingHigh, false},
		{"high", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSetting(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSetting(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSetting(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSettingIndex(t *testing.T) {
	for i, s := range AllSettings {
		if s.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", s, s.Index(), i)
		}
	}
	if Setting("Turbo").Index() != -1 {
		t.Error("expected -1 for unknown setting")
	}
}

func TestCoolingPolicyValidate(t *testing.T) {
	valid := CoolingPolicy{
		Low:    CoolingAction{EnergyCost: 1, TemperatureDelta: -0.1},
		Medium: CoolingAction{EnergyCost: 2, TemperatureDelta: -0.3},
		High:   CoolingAction{EnergyCost: 3, TemperatureDelta: -0.5},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid policy, got %v", err)
	}

	heating := valid
	heating.Medium.TemperatureDelta = 0.2
	if err := heating.Validate(); err == nil {
		t.Error("expected error for positive delta")
	}

	negative := valid
	negative.High.EnergyCost = -1
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative cost")
	}
}

func TestCoolingPolicyAction(t *testing.T) {
	p := CoolingPolicy{High: CoolingAction{EnergyCost: 3, TemperatureDelta: -0.5}}
	a, err := p.Action(SettingHigh)
	if err != nil {
		t.Fatal(err)
	}
	if a.EnergyCost != 3 || a.TemperatureDelta != -0.5 {
		t.Errorf("Action(High) = %+v", a)
	}
	if _, err := p.Action(Setting("Turbo")); err == nil {
		t.Error("expected error for unknown setting")
	}
}

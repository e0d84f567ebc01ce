package domain

import "testing"

func TestApplicationStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []ApplicationStatus{"", "applied", "APPLIED", "Hired"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestWorkMode_IsValid(t *testing.T) {
	t.Parallel()

	for _, m := range []WorkMode{ModeInOffice, ModeHybrid, ModeRemote} {
		if !m.IsValid() {
			t.Errorf("%s should be valid", m)
		}
	}
	for _, m := range []WorkMode{"", "remote", "Onsite"} {
		if m.IsValid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}

func TestActivity_IsValid(t *testing.T) {
	t.Parallel()

	for _, a := range []Activity{ActivityAll, ActivityActive, ActivityArchived} {
		if !a.IsValid() {
			t.Errorf("%s should be valid", a)
		}
	}
	if Activity("closed").IsValid() {
		t.Error("closed should be invalid")
	}
}

package id_test

import (
	"strings"
	"testing"

	"github.com/casetrail/ability/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"PrincipalID", id.NewPrincipalID, "user_"},
		{"MembershipID", id.NewMembershipID, "mbr_"},
		{"GrantID", id.NewGrantID, "grant_"},
		{"ApplicantID", id.NewApplicantID, "aplc_"},
		{"DecisionLogID", id.NewDecisionLogID, "declog_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixMembership)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixMembership {
		t.Errorf("expected prefix %q, got %q", id.PrefixMembership, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"PrincipalID", id.NewPrincipalID, id.ParsePrincipalID},
		{"MembershipID", id.NewMembershipID, id.ParseMembershipID},
		{"GrantID", id.NewGrantID, id.ParseGrantID},
		{"ApplicantID", id.NewApplicantID, id.ParseApplicantID},
		{"DecisionLogID", id.NewDecisionLogID, id.ParseDecisionLogID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := tt.newFn()
			parsed, err := tt.parseFn(orig.String())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if parsed.String() != orig.String() {
				t.Errorf("round trip mismatch: %q != %q", parsed, orig)
			}
		})
	}
}

func TestParseWithPrefix_Mismatch(t *testing.T) {
	mid := id.NewMembershipID()
	if _, err := id.ParseGrantID(mid.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Fatal("Nil should report IsNil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil String should be empty, got %q", id.Nil.String())
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	orig := id.NewPrincipalID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed id.ID
	if err := parsed.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed, orig)
	}
}

func TestScan(t *testing.T) {
	orig := id.NewGrantID()

	var fromString id.ID
	if err := fromString.Scan(orig.String()); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if fromString.String() != orig.String() {
		t.Errorf("scan string mismatch: %q != %q", fromString, orig)
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scan nil should yield Nil ID")
	}
}

package restaurant

import "testing"

func TestParseTwoPartAddress(t *testing.T) {
	parser := NewAustralianAddressParser()

	got := parser.Parse("29 Stanley St Plaza, South Brisbane QLD 4101")

	assertStrPtr(t, "suburb", got.Suburb, "South Brisbane")
	assertStrPtr(t, "state", got.State, "QLD")
	assertStrPtr(t, "postcode", got.Postcode, "4101")
	assertStrPtr(t, "country", got.Country, "Australia")
}

func TestParseThreePartAddress(t *testing.T) {
	parser := NewAustralianAddressParser()

	got := parser.Parse("123 Eagle St, Brisbane City QLD 4000, Australia")

	assertStrPtr(t, "suburb", got.Suburb, "Brisbane City")
	assertStrPtr(t, "state", got.State, "QLD")
	assertStrPtr(t, "postcode", got.Postcode, "4000")
	assertStrPtr(t, "country", got.Country, "Australia")
}

func TestParseFourPartAddress(t *testing.T) {
	parser := NewAustralianAddressParser()

	got := parser.Parse("Riverside Centre, 123 Eagle St, Brisbane City QLD 4000, Australia")

	assertStrPtr(t, "suburb", got.Suburb, "Brisbane City")
	assertStrPtr(t, "state", got.State, "QLD")
	assertStrPtr(t, "postcode", got.Postcode, "4000")
	assertStrPtr(t, "country", got.Country, "Australia")
}

func TestParseForeignAddressLeavesComponentsNil(t *testing.T) {
	parser := NewAustralianAddressParser()

	got := parser.Parse("1-chome-1-2 Oshiage, Sumida City, Tokyo 131-0045, Japan")

	if got.Suburb != nil || got.State != nil || got.Postcode != nil || got.Country != nil {
		t.Fatalf("expected all components nil for a foreign address, got %+v", got)
	}
}

func TestParseUnstructuredAddressKeepsSuburbFallback(t *testing.T) {
	parser := NewAustralianAddressParser()

	got := parser.Parse("Shop 5, The Wharf, Mooloolaba, Australia")

	assertStrPtr(t, "suburb", got.Suburb, "Mooloolaba")
	if got.State != nil || got.Postcode != nil {
		t.Fatalf("expected no state or postcode, got %+v", got)
	}
	assertStrPtr(t, "country", got.Country, "Australia")
}

func assertStrPtr(t *testing.T, field string, got *string, want string) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected %s %q, got nil", field, want)
	}
	if *got != want {
		t.Fatalf("expected %s %q, got %q", field, want, *got)
	}
}

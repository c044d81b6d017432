package synonym

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTableHasNoAmbiguity(t *testing.T) {
	if _, err := New(defaultAliases); err != nil {
		t.Fatalf("New(defaultAliases) error = %v", err)
	}

	owner := make(map[string]Field)
	table := Default()
	for _, f := range Order {
		for _, alias := range table.NormalizedCandidates(f) {
			if prev, ok := owner[alias]; ok {
				t.Errorf("alias %q listed under %s and %s", alias, prev, f)
			}
			owner[alias] = f
		}
	}
}

func TestDefaultTableGlossaryAliases(t *testing.T) {
	tests := []struct {
		field   Field
		aliases []string
	}{
		{StayDate, []string{"date", "trans_date", "posting_date", "傳票日期"}},
		{RoomsSold, []string{"rooms_sold", "sold_rooms", "間夜", "房晚"}},
		{RoomsAvailable, []string{"rooms_avail", "available_rooms", "可售", "供應房晚"}},
		{RoomRevenue, []string{"room_revenue", "rm_rev", "房租收入"}},
		{FBRevenue, []string{"fb_revenue", "f&b", "beverage", "餐飲收入"}},
		{OtherRevenue, []string{"other_revenue", "misc_revenue", "其他收入"}},
		{Channel, []string{"channel", "ota", "booking_source"}},
		{RatePlan, []string{"rate_plan", "market_segment"}},
	}

	table := Default()
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			candidates := table.Candidates(tt.field)
			if len(candidates) < len(tt.aliases) {
				t.Fatalf("Candidates(%s) = %v, expected prefix %v", tt.field, candidates, tt.aliases)
			}
			for i, alias := range tt.aliases {
				if candidates[i] != alias {
					t.Errorf("Candidates(%s)[%d] = %q, expected %q", tt.field, i, candidates[i], alias)
				}
			}
		})
	}
}

func TestNewRejectsAmbiguousAlias(t *testing.T) {
	_, err := New(map[Field][]string{
		RoomsSold:      {"rooms", "sold"},
		RoomsAvailable: {"ROOMS"},
	})

	var ambiguous *AmbiguousAliasError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("New() error = %v, expected *AmbiguousAliasError", err)
	}
	if ambiguous.First != RoomsSold || ambiguous.Second != RoomsAvailable {
		t.Errorf("AmbiguousAliasError = %+v", ambiguous)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		aliases map[Field][]string
	}{
		{"Unknown field", map[Field][]string{"guests": {"pax"}}},
		{"Empty alias", map[Field][]string{StayDate: {"date", "  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.aliases); err == nil {
				t.Errorf("New() expected error")
			}
		})
	}
}

func TestNewCollapsesDuplicates(t *testing.T) {
	table := MustNew(map[Field][]string{StayDate: {"Date", "date ", "DATE", "日期"}})
	if got := table.Candidates(StayDate); len(got) != 2 || got[0] != "Date" || got[1] != "日期" {
		t.Errorf("Candidates() = %v, expected [Date 日期]", got)
	}
}

func TestCandidatesReturnsCopy(t *testing.T) {
	table := Default()
	c := table.Candidates(StayDate)
	c[0] = "mutated"
	if table.Candidates(StayDate)[0] != "date" {
		t.Errorf("Candidates() must not expose internal state")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Rooms Sold", "roomssold"},
		{"  ROOMS_AVAIL ", "rooms_avail"},
		{"Ｒｍ＿Ｒｅｖ", "rm_rev"},
		{"間 夜", "間夜"},
		{"F&B", "f&b"},
		{"Date　", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseField(t *testing.T) {
	if f, ok := ParseField("Rooms_Sold"); !ok || f != RoomsSold {
		t.Errorf("ParseField(Rooms_Sold) = %q, %v", f, ok)
	}
	if _, ok := ParseField("guests"); ok {
		t.Errorf("ParseField(guests) should fail")
	}
}

func TestMerge(t *testing.T) {
	merged, err := Default().Merge(map[Field][]string{RoomsSold: {"售出房數"}})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	candidates := merged.Candidates(RoomsSold)
	if candidates[len(candidates)-1] != "售出房數" {
		t.Errorf("Merge() should append after defaults, got %v", candidates)
	}
	if candidates[0] != "rooms_sold" {
		t.Errorf("Merge() changed priority order: %v", candidates)
	}

	if _, err := Default().Merge(map[Field][]string{Channel: {"間夜"}}); err == nil {
		t.Errorf("Merge() with an alias of another field expected error")
	}
}

func TestExtend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synonyms.yaml")
	content := "fields:\n  rooms_sold: [\"Rooms Occ\"]\n  Room_Type: [\"房種\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write synonym file: %v", err)
	}

	table, err := Extend(Default(), path)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	found := false
	for _, alias := range table.NormalizedCandidates(RoomsSold) {
		if alias == "roomsocc" {
			found = true
		}
	}
	if !found {
		t.Errorf("Extend() did not add rooms_sold alias")
	}
	if c := table.Candidates(RoomType); c[len(c)-1] != "房種" {
		t.Errorf("Extend() did not add room_type alias, got %v", c)
	}

	same, err := Extend(table, "")
	if err != nil || same != table {
		t.Errorf("Extend() with empty path should return base unchanged")
	}

	if _, err := Extend(Default(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("Extend() with missing file expected error")
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	if _, err := Parse([]byte("fields:\n  guests: [pax]\n")); err == nil {
		t.Errorf("Parse() expected error for unknown field")
	}
	if _, err := Parse([]byte("fields: [")); err == nil {
		t.Errorf("Parse() expected error for malformed YAML")
	}
}

package adminlist

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/visadesk/internal/models"
)

func records(n int) []models.VisaRecord {
	out := make([]models.VisaRecord, 0, n)
	for i := 1; i <= n; i++ {
		nat := "Vietnam"
		if i%3 == 0 {
			nat = "Laos"
		}
		out = append(out, models.VisaRecord{
			ID:             int64(i),
			Nationality:    nat,
			FullName:       fmt.Sprintf("Holder %02d", i),
			PassportNumber: fmt.Sprintf("P%05d", i),
			ImageURLs:      []string{fmt.Sprintf("https://x/%d.jpg", i)},
		})
	}
	return out
}

func TestParseField(t *testing.T) {
	assert.Equal(t, FieldFullName, ParseField(""))
	assert.Equal(t, FieldFullName, ParseField("date_of_birth"))
	assert.Equal(t, FieldNationality, ParseField("Nationality"))
	assert.Equal(t, FieldPassportNumber, ParseField(" passport_number "))
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	s := NewSnapshot(records(9))

	assert.Equal(t, 3, s.Filter(FieldNationality, "LAO").Len())
	assert.Equal(t, 1, s.Filter(FieldPassportNumber, "p00007").Len())
	assert.Equal(t, 9, s.Filter(FieldFullName, "holder").Len())
	assert.Equal(t, 9, s.Filter(FieldFullName, "").Len())
	assert.Equal(t, 0, s.Filter(FieldFullName, "nobody").Len())
}

func TestFilter_TermMatchedAsEntered(t *testing.T) {
	s := NewSnapshot([]models.VisaRecord{
		{ID: 1, FullName: "Nguyen Van A"},
		{ID: 2, FullName: "Evan"},
	})

	assert.Equal(t, 2, s.Filter(FieldFullName, "van").Len())
	got := s.Filter(FieldFullName, "van ").Records()
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.Equal(t, 1, s.Filter(FieldFullName, " ").Len())
	assert.Equal(t, 0, s.Filter(FieldFullName, "  ").Len())
}

func TestPaginate_ContiguousNoGapsNoDuplicates(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25} {
		for _, size := range []int{1, 3, 10} {
			s := NewSnapshot(records(n))
			first := s.Paginate(1, size)

			var seen []int64
			for p := 1; p <= first.TotalPages; p++ {
				page := s.Paginate(p, size)
				assert.LessOrEqual(t, len(page.Items), size)
				for _, r := range page.Items {
					seen = append(seen, r.ID)
				}
			}

			require.Len(t, seen, n, "n=%d size=%d", n, size)
			for i, id := range seen {
				assert.Equal(t, int64(i+1), id)
			}
		}
	}
}

func TestPaginate_Bounds(t *testing.T) {
	s := NewSnapshot(records(25))

	p := s.Paginate(3, 10)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())

	past := s.Paginate(4, 10)
	assert.Empty(t, past.Items)
	assert.NotNil(t, past.Items)

	def := s.Paginate(0, 0)
	assert.Equal(t, 1, def.Page)
	assert.Equal(t, DefaultPageSize, def.PageSize)
	assert.Len(t, def.Items, DefaultPageSize)
}

func TestPaginate_HugeInputs(t *testing.T) {
	s := NewSnapshot(records(3))

	for _, page := range []int{math.MaxInt, math.MaxInt/10 + 2, 922337203685477582} {
		p := s.Paginate(page, 10)
		assert.Empty(t, p.Items, "page=%d", page)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, 3, p.Total)
	}

	p := s.Paginate(1, math.MaxInt)
	assert.Equal(t, 1, p.TotalPages)
	assert.Len(t, p.Items, 3)
	assert.False(t, p.HasNext())

	p = s.Paginate(math.MaxInt, math.MaxInt)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalPages)

	empty := NewSnapshot(nil).Paginate(1, math.MaxInt)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestView_FilteredCountDrivesPages(t *testing.T) {
	p := View(records(30), FieldNationality, "laos", 1, 4)
	assert.Equal(t, 10, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	for _, r := range p.Items {
		assert.Equal(t, "Laos", r.Nationality)
	}
}

func TestSnapshot_IsolatedFromSource(t *testing.T) {
	src := records(2)
	s := NewSnapshot(src)
	src[0].FullName = "changed"
	src[0].ImageURLs[0] = "changed"

	got := s.Records()
	assert.Equal(t, "Holder 01", got[0].FullName)
	assert.Equal(t, "https://x/1.jpg", got[0].ImageURLs[0])

	got[1].FullName = "mutated"
	assert.Equal(t, "Holder 02", s.Records()[1].FullName)
}

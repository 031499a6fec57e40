package records

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"Robert Johnson", "", true},
		{"Robert Johnson", "rob", true},
		{"Robert Johnson", "JOHN", true},
		{"Robert Johnson", "jonson", true},
		{"Linda Martinez", "martines", true},
		{"Linda Martinez", "lnd", false},
		{"David Wilson", "wilsn", true},
		{"David Wilson", "emma", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			require.Equal(t, tt.want, MatchName(tt.name, tt.query))
		})
	}
}

func TestSearchNarrowsView(t *testing.T) {
	s := NewStore(TestRequestLifecycle, labRequests()...)
	patient := func(r TestRequest) string { return r.Patient }

	var got []string
	for r := range Search(s.List(FilterAll), "wilson", patient) {
		got = append(got, r.ID)
	}
	require.Equal(t, []string{"3", "4"}, got)

	got = got[:0]
	for r := range Search(s.List(FilterPending), "wilson", patient) {
		got = append(got, r.ID)
	}
	require.Equal(t, []string{"4"}, got)
}

func TestValidate(t *testing.T) {
	ok := labRequests()[0]
	require.NoError(t, ok.Validate())

	noTests := ok
	noTests.Tests = nil
	require.ErrorIs(t, noTests.Validate(), ErrInvalidRecord)

	badPriority := ok
	badPriority.Priority = "urgent"
	require.ErrorIs(t, badPriority.Validate(), ErrInvalidRecord)

	req := AppointmentRequest{ID: "r1", PatientName: "Emma", Status: StatusPending}
	require.NoError(t, req.Validate())
	req.Status = StatusCompleted
	require.ErrorIs(t, req.Validate(), ErrInvalidRecord)
}

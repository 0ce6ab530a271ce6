package medication

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	meds map[string]Medication

	adherenceErr error
	listCalls    int
}

func newStubRepo(meds ...Medication) *stubRepo {
	r := &stubRepo{meds: make(map[string]Medication)}
	for _, m := range meds {
		r.meds[m.ID] = m
	}
	return r
}

func (r *stubRepo) List(_ context.Context, _ int64) ([]Medication, error) {
	r.listCalls++
	out := make([]Medication, 0, len(r.meds))
	for _, m := range r.meds {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (r *stubRepo) Get(_ context.Context, _ int64, id string) (Medication, bool, error) {
	m, ok := r.meds[id]
	return m, ok, nil
}

func (r *stubRepo) Create(_ context.Context, _ int64, med Medication) error {
	r.meds[med.ID] = med
	return nil
}

func (r *stubRepo) Update(_ context.Context, _ int64, med Medication) error {
	r.meds[med.ID] = med
	return nil
}

func (r *stubRepo) UpdateAdherence(_ context.Context, _ int64, id string, takenLog map[string]bool, pillsRemaining int) error {
	if r.adherenceErr != nil {
		return r.adherenceErr
	}
	m := r.meds[id]
	m.TakenLog = takenLog
	m.PillsRemaining = pillsRemaining
	r.meds[id] = m
	return nil
}

func (r *stubRepo) Delete(_ context.Context, _ int64, id string) (bool, error) {
	if _, ok := r.meds[id]; !ok {
		return false, nil
	}
	delete(r.meds, id)
	return true, nil
}

func newServiceUnderTest(repo Repository, now time.Time) *service {
	return &service{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return now },
	}
}

func TestListSeedsDefaultsOnEmptyCollection(t *testing.T) {
	repo := newStubRepo()
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	meds, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, meds, 3)
	require.Equal(t, "Lisinopril", meds[0].Name)
	require.Equal(t, "Metformin", meds[1].Name)
	require.Equal(t, "Atorvastatin", meds[2].Name)
	for _, m := range meds {
		require.Equal(t, DefaultPillsRemaining, m.PillsRemaining)
		require.Empty(t, m.TakenLog)
	}

	// Seeded rows are read back, not echoed from the seed slice.
	require.Equal(t, 2, repo.listCalls)
}

func TestListDoesNotReseed(t *testing.T) {
	repo := newStubRepo(Medication{ID: "x", Name: "Aspirin", Time: "09:00"})
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	meds, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, meds, 1)
}

func TestSaveCreateAssignsIDAndEmptyLog(t *testing.T) {
	repo := newStubRepo(Medication{ID: "x", Name: "Aspirin", Time: "09:00"})
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	med, err := svc.Save(context.Background(), 7, "", Draft{Name: "Ibuprofen", Dosage: "200mg", Time: "10:00"})
	require.NoError(t, err)
	require.NotEmpty(t, med.ID)
	require.NotEqual(t, "x", med.ID)
	require.NotNil(t, med.TakenLog)
	require.Empty(t, med.TakenLog)
	require.Len(t, repo.meds, 2)
}

func TestSaveEditPreservesIDAndTakenLog(t *testing.T) {
	repo := newStubRepo(Medication{
		ID:       "x",
		Name:     "Aspirin",
		Dosage:   "100mg",
		Time:     "09:00",
		TakenLog: map[string]bool{"2024-07-01": true},
	})
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	med, err := svc.Save(context.Background(), 7, "x", Draft{Name: "Aspirin", Dosage: "200mg", Time: "10:00"})
	require.NoError(t, err)
	require.Equal(t, "x", med.ID)
	require.Equal(t, "200mg", med.Dosage)
	require.Equal(t, map[string]bool{"2024-07-01": true}, med.TakenLog)
}

func TestSaveEditUnknownID(t *testing.T) {
	svc := newServiceUnderTest(newStubRepo(), day("2024-07-02"))

	_, err := svc.Save(context.Background(), 7, "missing", Draft{Name: "A", Dosage: "B", Time: "08:00"})
	require.Error(t, err)
}

func TestToggleDefaultsToToday(t *testing.T) {
	repo := newStubRepo(Medication{ID: "x", TakenLog: map[string]bool{}, PillsRemaining: 10, PillsPerDose: 1})
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	result, err := svc.Toggle(context.Background(), 7, "x", "")
	require.NoError(t, err)
	require.True(t, result.Persisted)
	require.True(t, result.Medication.TakenOn("2024-07-02"))
	require.Equal(t, 9, result.Medication.PillsRemaining)
	require.Equal(t, 9, repo.meds["x"].PillsRemaining)
}

func TestToggleWriteFailureKeepsOptimisticState(t *testing.T) {
	repo := newStubRepo(Medication{ID: "x", TakenLog: map[string]bool{}, PillsRemaining: 10, PillsPerDose: 1})
	repo.adherenceErr = errors.New("store down")
	svc := newServiceUnderTest(repo, day("2024-07-02"))

	result, err := svc.Toggle(context.Background(), 7, "x", "")
	require.NoError(t, err)
	require.False(t, result.Persisted)
	require.True(t, result.Medication.TakenOn("2024-07-02"))
	require.Equal(t, 9, result.Medication.PillsRemaining)
	// The store kept its previous state.
	require.Equal(t, 10, repo.meds["x"].PillsRemaining)
}

func TestToggleUnknownID(t *testing.T) {
	svc := newServiceUnderTest(newStubRepo(), day("2024-07-02"))

	_, err := svc.Toggle(context.Background(), 7, "missing", "")
	require.Error(t, err)
}

func TestDeleteUnknownID(t *testing.T) {
	svc := newServiceUnderTest(newStubRepo(), day("2024-07-02"))

	err := svc.Delete(context.Background(), 7, "missing")
	require.Error(t, err)
}

func TestWeekScheduleMarksTakenDays(t *testing.T) {
	repo := newStubRepo(Medication{
		ID:   "x",
		Name: "Aspirin",
		Time: "09:00",
		TakenLog: map[string]bool{
			"2024-07-01": true,
			"2024-07-03": true,
		},
	})
	svc := newServiceUnderTest(repo, day("2024-07-04"))

	schedule, err := svc.WeekSchedule(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "2024-07-01", schedule.DateKeys[0])
	require.Len(t, schedule.Rows, 1)
	require.Equal(t, []bool{true, false, true, false, false, false, false}, schedule.Rows[0].Taken)
}

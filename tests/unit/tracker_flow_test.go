package unit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
	"github.com/medtrack/medtrack-service/internal/domain/medication"
	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
	"github.com/medtrack/medtrack-service/internal/infra/caregiverrepo"
	"github.com/medtrack/medtrack-service/internal/infra/medrepo"
	"github.com/medtrack/medtrack-service/internal/infra/overpass"
	"github.com/medtrack/medtrack-service/internal/infra/pharmacyrepo"
	"github.com/medtrack/medtrack-service/internal/infra/placescache"
	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

const testUserID int64 = 42

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMedicationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := medication.NewService(medrepo.NewMemoryRepository(), newTestLogger())

	// First read seeds the default medications.
	meds, err := svc.List(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, meds, 3)
	require.Equal(t, "Lisinopril", meds[0].Name)

	created, err := svc.Save(ctx, testUserID, "", medication.Draft{
		Name:      "Amlodipine",
		Dosage:    "5mg",
		Time:      "09:30",
		Frequency: medication.FrequencyDaily,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, medication.DefaultPillsRemaining, created.PillsRemaining)
	require.Len(t, created.Days, 7)

	// Taking debits a dose, untaking does not credit it back.
	today := time.Now().Format("2006-01-02")
	result, err := svc.Toggle(ctx, testUserID, created.ID, today)
	require.NoError(t, err)
	require.True(t, result.Persisted)
	require.True(t, result.Medication.TakenOn(today))
	require.Equal(t, 29, result.Medication.PillsRemaining)

	result, err = svc.Toggle(ctx, testUserID, created.ID, today)
	require.NoError(t, err)
	require.False(t, result.Medication.TakenOn(today))
	require.Equal(t, 29, result.Medication.PillsRemaining)

	// Editing preserves the adherence log.
	result, err = svc.Toggle(ctx, testUserID, created.ID, today)
	require.NoError(t, err)
	edited, err := svc.Save(ctx, testUserID, created.ID, medication.Draft{
		Name:      "Amlodipine",
		Dosage:    "10mg",
		Time:      "09:30",
		Frequency: medication.FrequencyDaily,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, edited.ID)
	require.True(t, edited.TakenOn(today))

	require.NoError(t, svc.Delete(ctx, testUserID, created.ID))
	err = svc.Delete(ctx, testUserID, created.ID)
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestWeekScheduleCoversCurrentWeek(t *testing.T) {
	ctx := context.Background()
	svc := medication.NewService(medrepo.NewMemoryRepository(), newTestLogger())

	schedule, err := svc.WeekSchedule(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, schedule.DateKeys, 7)
	require.Len(t, schedule.Rows, 3)
	require.Contains(t, schedule.DateKeys, time.Now().Format("2006-01-02"))
	for _, row := range schedule.Rows {
		require.Len(t, row.Taken, 7)
	}
}

func TestPharmacySearchFlow(t *testing.T) {
	ctx := context.Background()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"type": "node", "id": 1, "lat": 37.80, "lon": -122.41,
				 "tags": {"name": "Far Pharmacy", "phone": "(415) 555-0100"}},
				{"type": "node", "id": 2, "lat": 37.781, "lon": -122.41,
				 "tags": {"name": "Near Pharmacy"}}
			]
		}`))
	}))
	defer server.Close()

	svc := pharmacy.NewService(
		pharmacy.Config{DefaultRadiusKm: 5, CacheTTL: time.Minute},
		overpass.NewClient(server.URL, overpass.Options{}),
		placescache.NewMemoryStore(),
		pharmacyrepo.NewMemoryRepository(),
		newTestLogger(),
	)

	origin := pharmacy.Coordinate{Lat: 37.78, Lng: -122.41}
	places, err := svc.Search(ctx, testUserID, pharmacy.SearchRequest{Origin: origin})
	require.NoError(t, err)
	require.Len(t, places, 2)
	require.Equal(t, "Near Pharmacy", places[0].Name)
	require.NotNil(t, places[0].DistanceMiles)
	require.Less(t, *places[0].DistanceMiles, *places[1].DistanceMiles)

	// A repeat search for the same area is served from the cache.
	_, err = svc.Search(ctx, testUserID, pharmacy.SearchRequest{Origin: origin})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// Refill calls need a preferred pharmacy with a phone number.
	_, err = svc.RefillCall(ctx, testUserID)
	require.True(t, apperrors.IsCode(err, "no_preferred_pharmacy"))

	chosen, err := svc.ChoosePreferred(ctx, testUserID, places[1])
	require.NoError(t, err)
	require.Equal(t, "node_1", chosen.ID)

	places, err = svc.Search(ctx, testUserID, pharmacy.SearchRequest{Origin: origin})
	require.NoError(t, err)
	require.True(t, places[1].Preferred)
	require.False(t, places[0].Preferred)

	call, err := svc.RefillCall(ctx, testUserID)
	require.NoError(t, err)
	require.Equal(t, "tel:4155550100", call.Dial)
}

func TestCaregiverFlow(t *testing.T) {
	ctx := context.Background()
	svc := caregiver.NewService(caregiverrepo.NewMemoryRepository(), newTestLogger())

	_, found, err := svc.Get(ctx, testUserID)
	require.NoError(t, err)
	require.False(t, found)

	saved, err := svc.Save(ctx, testUserID, caregiver.Contact{
		Name:  "  Maria Lopez ",
		Phone: " 555-0134 ",
		Notes: "Call after 9am",
	})
	require.NoError(t, err)
	require.Equal(t, "Maria Lopez", saved.Name)
	require.Equal(t, "555-0134", saved.Phone)

	stored, found, err := svc.Get(ctx, testUserID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, saved, stored)
}

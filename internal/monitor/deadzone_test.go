package monitor

import (
	"staffping/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDeadzones = Deadzones{
	models.RankConductor: 30 * time.Minute,
	models.RankMod:       time.Hour,
	models.RankAdmin:     2 * time.Hour,
}

func TestEvaluateNobodyOnline(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()

	marks, top := n.Evaluate(doc, nil, time.Now())

	assert.Nil(t, marks)
	assert.Nil(t, top)
	assert.Empty(t, doc)
}

func TestEvaluateFreshDocumentRefreshesWithoutMarking(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()
	now := time.Now()

	marks, top := n.Evaluate(doc, []models.StaffEntry{{Name: "Alice", UUID: "a", Rank: "Mod"}}, now)

	assert.Nil(t, marks)
	require.NotNil(t, top)
	assert.Equal(t, "Alice", top.Name)
	assert.Equal(t, now.UnixMilli(), doc.Get(models.RankMod.Key()))
	assert.Equal(t, now.UnixMilli(), doc.Get(models.RankConductor.Key()))
	assert.False(t, doc.Has(models.RankAdmin.Key()))
}

func TestEvaluateHysteresis(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()
	t0 := time.Now()
	staff := []models.StaffEntry{{Name: "Alice", UUID: "a", Rank: "Mod"}}

	n.Evaluate(doc, staff, t0)

	// Quiet for less than the deadzone: refresh only.
	marks, _ := n.Evaluate(doc, staff, t0.Add(30*time.Minute))
	assert.Nil(t, marks)

	// Quiet past the deadzone: mark.
	t2 := t0.Add(30*time.Minute + 61*time.Minute)
	marks, top := n.Evaluate(doc, staff, t2)
	require.Len(t, marks, 2)
	assert.Equal(t, models.RankMod, marks[0].Rank)
	assert.Equal(t, models.RankConductor, marks[1].Rank)
	assert.Equal(t, "Alice", top.Name)
	assert.InDelta(t, (61 * time.Minute).Minutes(), marks[0].Elapsed.Minutes(), 0.01)
}

func TestEvaluateCascadeRefreshesLowerRanks(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()
	t0 := time.Now()

	admin := []models.StaffEntry{{Name: "Root", UUID: "r", Rank: "Admin"}}
	n.Evaluate(doc, admin, t0)

	// An hour later the admin is still around: the conductor deadzone (30m)
	// would have elapsed, but admin presence counts as conductor presence.
	marks, _ := n.Evaluate(doc, admin, t0.Add(29*time.Minute))
	assert.Nil(t, marks)

	t2 := t0.Add(3 * time.Hour)
	marks, _ = n.Evaluate(doc, admin, t2)
	require.Len(t, marks, 3)
	assert.Equal(t, models.RankAdmin, marks[0].Rank)
	assert.Equal(t, models.RankMod, marks[1].Rank)
	assert.Equal(t, models.RankConductor, marks[2].Rank)
}

func TestEvaluateLowerRankLeavesHigherTimersAlone(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()
	t0 := time.Now()

	n.Evaluate(doc, []models.StaffEntry{{Name: "Root", UUID: "r", Rank: "Admin"}}, t0)

	t1 := t0.Add(time.Minute)
	conductor := []models.StaffEntry{{Name: "Chip", UUID: "c", Rank: "Conductor"}}
	marks, _ := n.Evaluate(doc, conductor, t1)

	assert.Nil(t, marks)
	assert.Equal(t, t1.UnixMilli(), doc.Get(models.RankConductor.Key()))
	assert.Equal(t, t0.UnixMilli(), doc.Get(models.RankMod.Key()))
	assert.Equal(t, t0.UnixMilli(), doc.Get(models.RankAdmin.Key()))
}

func TestEvaluatePicksHighestRankIndividual(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()

	staff := []models.StaffEntry{
		{Name: "Chip", UUID: "c", Rank: "Conductor"},
		{Name: "Maude", UUID: "m", Rank: "Mod"},
	}
	_, top := n.Evaluate(doc, staff, time.Now())

	require.NotNil(t, top)
	assert.Equal(t, "Maude", top.Name)
}

func TestEvaluateIgnoresUnknownRanks(t *testing.T) {
	n := NewDeadzoneNotifier(testDeadzones)
	doc := models.NewLastSeenDoc()

	marks, top := n.Evaluate(doc, []models.StaffEntry{{Name: "X", UUID: "x", Rank: "Intern"}}, time.Now())

	assert.Nil(t, marks)
	assert.Nil(t, top)
}

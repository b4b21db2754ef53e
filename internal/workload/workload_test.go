package workload

// file: internal/workload/workload_test.go

import (
	"testing"
	"time"

	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = triage.NewClock(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), time.UTC)

var (
	ann = workitem.Person{ID: 1, Name: "Ann"}
	bo  = workitem.Person{ID: 2, Name: "Bo"}
	cy  = workitem.Person{ID: 3, Name: "Cy"}
)

func todo(id int64, project string, who ...workitem.Person) workitem.Item {
	return workitem.Item{Kind: workitem.KindTodo, ID: id, Title: "t", ProjectName: project, Assignees: who}
}

func overdue(it workitem.Item, days int) workitem.Item {
	d := clock.Today().AddDays(-days)
	it.DueOn = &d
	return it
}

func TestAnalyzeNoItems(t *testing.T) {
	people := []workitem.Person{ann, bo, cy}
	ws := Analyze(nil, people, clock, SortByWorkload)
	require.Len(t, ws, 3)
	for _, w := range ws {
		assert.Equal(t, TierNoAssignments, w.Status)
		assert.Equal(t, 0, w.TotalWorkload)
		assert.Equal(t, triage.RiskNone, w.RiskLevel)
		assert.Zero(t, w.CompletionRate)
	}
}

func TestAnalyzeCounts(t *testing.T) {
	done := todo(3, "Alpha", ann)
	done.Completed = true
	card := workitem.Item{Kind: workitem.KindCard, ID: 4, ProjectName: "Beta", Assignees: []workitem.Person{ann, bo}}
	entry := workitem.Item{Kind: workitem.KindScheduleEntry, ID: 5, Assignees: []workitem.Person{cy}}
	stranger := workitem.Person{ID: 99, Name: "Zed"}

	items := []workitem.Item{
		overdue(todo(1, "Alpha", ann), 3),
		todo(2, "Alpha", ann),
		done,
		card,
		entry,
		todo(6, "Gamma", stranger),
	}
	ws := Analyze(items, []workitem.Person{ann, bo, cy}, clock, SortByWorkload)
	require.Len(t, ws, 4, "unknown assignees are appended")

	a := ws[0]
	assert.Equal(t, "Ann", a.Person.Name)
	assert.Equal(t, 2, a.ActiveTodos)
	assert.Equal(t, 1, a.CompletedTodos)
	assert.Equal(t, 1, a.OverdueTodos)
	assert.Equal(t, 1, a.Cards)
	assert.Equal(t, 3, a.TotalWorkload)
	assert.InDelta(t, 1.0/3.0, a.CompletionRate, 1e-9)
	assert.Equal(t, []string{"Alpha", "Beta"}, a.Projects)
	assert.Equal(t, TierLight, a.Status)
	assert.Equal(t, triage.RiskLow, a.RiskLevel)
	require.Len(t, a.OverdueItems, 1)
	assert.Equal(t, 3, a.OverdueItems[0].DaysOverdue)

	byName := map[string]PersonWorkload{}
	for _, w := range ws {
		byName[w.Person.Name] = w
	}
	assert.Equal(t, 1, byName["Bo"].TotalWorkload)
	assert.Equal(t, TierNoAssignments, byName["Cy"].Status, "schedule entries are not workload")
	assert.Equal(t, 1, byName["Zed"].ActiveTodos)
}

func TestTiersAndRisk(t *testing.T) {
	tiers := map[int]Tier{0: TierNoAssignments, 1: TierLight, 3: TierLight, 4: TierModerate, 8: TierModerate, 9: TierHeavy, 15: TierHeavy, 16: TierOverloaded}
	for total, want := range tiers {
		assert.Equal(t, want, TierFor(total), "total %d", total)
	}
	risks := map[int]string{0: triage.RiskNone, 1: triage.RiskLow, 2: triage.RiskLow, 3: triage.RiskMedium, 5: triage.RiskMedium, 6: triage.RiskHigh}
	for n, want := range risks {
		assert.Equal(t, want, RiskFor(n), "overdue %d", n)
	}
}

func TestSortKeys(t *testing.T) {
	var items []workitem.Item
	for i := 0; i < 3; i++ {
		items = append(items, todo(int64(i), "P", bo))
	}
	items = append(items, overdue(todo(10, "P", cy), 1), overdue(todo(11, "P", cy), 2))

	names := func(ws []PersonWorkload) []string {
		out := make([]string, len(ws))
		for i, w := range ws {
			out[i] = w.Person.Name
		}
		return out
	}
	people := []workitem.Person{ann, bo, cy}
	assert.Equal(t, []string{"Bo", "Cy", "Ann"}, names(Analyze(items, people, clock, SortByWorkload)))
	assert.Equal(t, []string{"Cy", "Bo", "Ann"}, names(Analyze(items, people, clock, SortByOverdue)))
	assert.Equal(t, []string{"Ann", "Bo", "Cy"}, names(Analyze(items, people, clock, SortByName)))

	_, err := ParseSortKey("random")
	assert.Error(t, err)
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByWorkload, k)
}

func TestSummarize(t *testing.T) {
	var items []workitem.Item
	for i := 0; i < 16; i++ {
		items = append(items, todo(int64(i), "P", ann))
	}
	unowned := todo(100, "P")
	items = append(items, unowned)

	ws := Analyze(items, []workitem.Person{ann, bo}, clock, SortByWorkload)
	s := Summarize(ws, CountUnassigned(items))

	assert.Equal(t, 2, s.People)
	assert.Equal(t, 16, s.TotalWorkload)
	assert.InDelta(t, 8.0, s.AverageWorkload, 1e-9)
	assert.Equal(t, []string{"Ann"}, s.Overloaded)
	assert.Equal(t, []string{"Bo"}, s.Idle)
	assert.Equal(t, 1, s.Unassigned)
	assert.Equal(t, 1, s.ByStatus[TierOverloaded])
}

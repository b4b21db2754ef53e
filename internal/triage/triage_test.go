package triage

// file: internal/triage/triage_test.go

import (
	"testing"
	"time"

	"github.com/dkoosis/camptools/internal/workitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2026-10-14, noon UTC. The week runs Sunday 10-11 to Saturday 10-17.
var testClock = NewClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), time.UTC)

func dueIn(days int) *workitem.Date {
	d := testClock.Today().AddDays(days)
	return &d
}

func freshTodo(due *workitem.Date) workitem.Item {
	return workitem.Item{
		Kind:      workitem.KindTodo,
		ID:        1,
		Title:     "Ship",
		CreatedAt: testClock.Now.Add(-24 * time.Hour),
		DueOn:     due,
	}
}

func TestResolveAssignee(t *testing.T) {
	people := []workitem.Person{
		{ID: 1, Name: "John Doe", Email: "jd@example.com"},
		{ID: 2, Name: "Johnny Lee", Email: "jl@example.com"},
		{ID: 3, Name: "Ann", Email: "ann@example.com"},
	}

	t.Run("suggestions for partial name", func(t *testing.T) {
		r := ResolveAssignee("john", people)
		assert.False(t, r.Found)
		require.Len(t, r.Suggestions, 2)
		assert.Equal(t, "John Doe", r.Suggestions[0].Name)
		assert.Equal(t, "Johnny Lee", r.Suggestions[1].Name)
		assert.Contains(t, r.Message(), "Did you mean")
	})

	t.Run("by id", func(t *testing.T) {
		r := ResolveAssignee("3", people)
		require.True(t, r.Found)
		assert.Equal(t, MatchID, r.MatchedBy)
		assert.Equal(t, "Ann", r.Person.Name)
	})

	t.Run("by email ignoring case", func(t *testing.T) {
		r := ResolveAssignee("JL@Example.com", people)
		require.True(t, r.Found)
		assert.Equal(t, MatchEmail, r.MatchedBy)
		assert.Equal(t, int64(2), r.Person.ID)
	})

	t.Run("by name ignoring case", func(t *testing.T) {
		r := ResolveAssignee("john doe", people)
		require.True(t, r.Found)
		assert.Equal(t, MatchName, r.MatchedBy)
	})

	t.Run("nothing close", func(t *testing.T) {
		r := ResolveAssignee("zed", people)
		assert.False(t, r.Found)
		assert.Empty(t, r.Suggestions)
	})

	t.Run("suggestions are capped", func(t *testing.T) {
		many := make([]workitem.Person, 8)
		for i := range many {
			many[i] = workitem.Person{ID: int64(i + 1), Name: "Sam " + string(rune('A'+i))}
		}
		assert.Len(t, ResolveAssignee("sam", many).Suggestions, MaxSuggestions)
	})
}

func TestClassifyExamples(t *testing.T) {
	tests := []struct {
		name string
		due  *workitem.Date
		want Severity
	}{
		{"ten days overdue", dueIn(-10), SeverityCritical},
		{"seven days overdue", dueIn(-7), SeverityHigh},
		{"due today", dueIn(0), SeverityHigh},
		{"due tomorrow", dueIn(1), SeverityHigh},
		{"due in five days", dueIn(5), SeverityMedium},
		{"due in thirty days", dueIn(30), SeverityLow},
		{"no due date", nil, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := freshTodo(tt.due)
			got := Classify(item, testClock)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Classify(item, testClock), "classification is pure")
		})
	}
}

func TestClassifyAging(t *testing.T) {
	old := freshTodo(dueIn(30))
	old.CreatedAt = testClock.Now.Add(-20 * 24 * time.Hour)
	assert.Equal(t, SeverityHigh, Classify(old, testClock))

	old.Completed = true
	assert.Equal(t, SeverityLow, Classify(old, testClock), "age only matters for open items")
}

func TestInBucket(t *testing.T) {
	today := freshTodo(dueIn(0))
	assert.True(t, InBucket(today, BucketToday, testClock))
	assert.False(t, InBucket(today, BucketOverdue, testClock))
	assert.False(t, InBucket(today, BucketNextWeek, testClock))
	assert.Equal(t, BucketToday, TimelineBucket(today, testClock), "today is exclusive in a timeline")

	saturday := freshTodo(dueIn(3))
	assert.True(t, InBucket(saturday, BucketThisWeek, testClock))
	assert.False(t, InBucket(saturday, BucketNextWeek, testClock))

	sunday := freshTodo(dueIn(4))
	assert.False(t, InBucket(sunday, BucketThisWeek, testClock))
	assert.True(t, InBucket(sunday, BucketNextWeek, testClock))

	farOut := freshTodo(dueIn(11))
	assert.False(t, InBucket(farOut, BucketNextWeek, testClock))
	assert.Equal(t, BucketLater, TimelineBucket(farOut, testClock))

	yesterday := freshTodo(dueIn(-1))
	assert.True(t, InBucket(yesterday, BucketOverdue, testClock))

	none := freshTodo(nil)
	for _, b := range []Bucket{BucketOverdue, BucketToday, BucketThisWeek, BucketNextWeek} {
		assert.False(t, InBucket(none, b, testClock), b)
	}
	assert.Equal(t, BucketNoDueDate, TimelineBucket(none, testClock))
}

func TestWeekStartOnSunday(t *testing.T) {
	sunday := workitem.Date{Year: 2026, Month: time.October, Day: 11}
	assert.Equal(t, sunday, WeekStart(sunday))
	assert.Equal(t, sunday, WeekStart(sunday.AddDays(6)))
}

func TestTimeline(t *testing.T) {
	items := []workitem.Item{freshTodo(nil), freshTodo(dueIn(-2)), freshTodo(dueIn(2)), freshTodo(dueIn(-5))}
	groups := Timeline(items, testClock)
	require.Len(t, groups, 3)
	assert.Equal(t, BucketOverdue, groups[0].Bucket)
	assert.Equal(t, *dueIn(-5), *groups[0].Items[0].DueOn, "oldest due date first")
	assert.Equal(t, BucketThisWeek, groups[1].Bucket)
	assert.Equal(t, BucketNoDueDate, groups[2].Bucket)
}

func TestIsStale(t *testing.T) {
	item := freshTodo(nil)
	item.CreatedAt = testClock.Now.Add(-10 * 24 * time.Hour)
	assert.True(t, IsStale(item, testClock, 7))
	assert.False(t, IsStale(item, testClock, 14))

	item.UpdatedAt = testClock.Now.Add(-2 * 24 * time.Hour)
	assert.False(t, IsStale(item, testClock, 7), "recent update wins")
	assert.Equal(t, 2, DaysSinceActivity(item, testClock))

	card := item
	card.Kind = workitem.KindCard
	assert.Equal(t, IsStale(item, testClock, 1), IsStale(card, testClock, 1), "cards use the same day-based rule")

	assert.False(t, IsStale(workitem.Item{}, testClock, 7))
}

func TestApplyCriteria(t *testing.T) {
	ann := workitem.Person{ID: 7, Name: "Ann"}
	assigned := freshTodo(dueIn(-1))
	assigned.Assignees = []workitem.Person{ann}
	done := freshTodo(dueIn(-1))
	done.Completed = true
	done.Assignees = []workitem.Person{ann}
	card := freshTodo(dueIn(20))
	card.Kind = workitem.KindCard
	card.ProjectID = 9

	items := []workitem.Item{assigned, done, card}

	assert.Len(t, Apply(items, Criteria{}, testClock), 2, "completed hidden by default")
	assert.Len(t, Apply(items, Criteria{IncludeCompleted: true}, testClock), 3)
	assert.Len(t, Apply(items, Criteria{AssigneeID: 7, IncludeCompleted: true}, testClock), 2)
	assert.Len(t, Apply(items, Criteria{Kinds: []workitem.Kind{workitem.KindCard}}, testClock), 1)
	assert.Len(t, Apply(items, Criteria{ProjectIDs: []int64{9}}, testClock), 1)
	assert.Len(t, Apply(items, Criteria{Bucket: BucketOverdue}, testClock), 1)
	assert.Len(t, Apply(items, Criteria{MinSeverity: SeverityHigh}, testClock), 1)

	d := Criteria{StaleOnly: true, Bucket: BucketToday}.Describe()
	assert.Equal(t, DefaultStaleDays, d["stale_days"])
	assert.Equal(t, BucketToday, d["due"])
}

func TestAssessProjects(t *testing.T) {
	critical := freshTodo(dueIn(-10))
	critical.ProjectID, critical.ProjectName = 1, "Alpha"
	calm := freshTodo(dueIn(30))
	calm.ProjectID, calm.ProjectName = 2, "Beta"
	calm.Assignees = []workitem.Person{{ID: 1}}

	risks := AssessProjects([]workitem.Item{calm, critical}, testClock, 7)
	require.Len(t, risks, 2)
	assert.Equal(t, "Alpha", risks[0].ProjectName)
	assert.Equal(t, RiskHigh, risks[0].Level)
	assert.Equal(t, 1, risks[0].Overdue)
	assert.Equal(t, 1, risks[0].Unassigned)
	assert.Equal(t, RiskLow, risks[1].Level)
}

package basecamp_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/basecamp/basecamptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type recorder struct {
	calls  int
	errors int
}

func (r *recorder) RecordAPICall(_ time.Duration, err error) {
	r.calls++
	if err != nil {
		r.errors++
	}
}

func TestGetProjectDecodesDock(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.JSON("projects/1.json", map[string]any{
		"id":   1,
		"name": "Launch",
		"dock": []map[string]any{
			{"id": 10, "name": "todoset", "title": "To-dos", "enabled": true},
			{"id": 11, "name": "kanban_board", "title": "Card Table", "enabled": false},
			{"id": 12, "name": "schedule", "title": "Schedule"},
		},
	})

	p, err := srv.Client().GetProject(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Launch", p.Name)
	require.Len(t, p.Dock, 3)
	assert.Equal(t, "todoset", p.Dock[0].Name)
	assert.True(t, p.Dock[0].Enabled)
	assert.False(t, p.Dock[1].Enabled)
	assert.True(t, p.Dock[2].Enabled, "an entry without enabled counts as enabled")

	assert.Equal(t, []string{"Bearer " + basecamptest.Token}, srv.AuthHeaders())
}

func TestListProjectsFollowsPagination(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Pages("projects.json",
		[]map[string]any{{"id": 1, "name": "A"}, {"id": 2, "name": "B"}},
		[]map[string]any{{"id": 3, "name": "C"}},
	)

	projects, err := srv.Client().ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "C", projects[2].Name)
	assert.Equal(t, []string{"projects.json", "projects.json?page=2"}, srv.Requests())
}

func TestNon2xxIsAPIError(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Fail("projects/5.json", http.StatusForbidden)

	_, err := srv.Client().GetProject(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, basecamp.StatusCode(err))
	assert.True(t, basecamp.IsUnauthorized(err))
	assert.False(t, basecamp.IsNotFound(err))

	_, err = srv.Client().GetProject(context.Background(), 6)
	assert.True(t, basecamp.IsNotFound(err), "unregistered routes answer 404")
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Raw("people.json", http.StatusOK, `[{"id": "not-a-number"`)

	_, err := srv.Client().ListPeople(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, basecamp.ErrDecode))
}

func TestTimeoutIsMarked(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.JSON("people.json", []any{})
	srv.Delay("people.json", 500*time.Millisecond)

	c := srv.Client(basecamp.WithTimeout(50 * time.Millisecond))
	_, err := c.ListPeople(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, basecamp.ErrTimeout), "got %v", err)
}

func TestMetricsRecordedPerRoundTrip(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.JSON("projects/1.json", map[string]any{"id": 1, "name": "A"})
	rec := &recorder{}
	c := srv.Client(basecamp.WithMetrics(rec))

	_, err := c.GetProject(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.GetProject(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, 2, rec.calls)
	assert.Equal(t, 1, rec.errors)
}

func TestNewClientRequiresAccountAndToken(t *testing.T) {
	_, err := basecamp.NewClient("https://example.invalid", "", nil)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = basecamp.NewClient("https://example.invalid", "1", nil)
	require.Error(t, err)

	c, err := basecamp.NewClient("https://example.invalid/", "1", nil, basecamp.WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/1", c.BaseURL())
}

func TestSharedTransportAndLimiter(t *testing.T) {
	tr := basecamp.NewTransport(3)
	assert.Equal(t, 3, tr.MaxConnsPerHost)
	assert.Equal(t, 3, tr.MaxIdleConnsPerHost)

	srv := basecamptest.NewServer(t)
	srv.JSON("projects/1.json", map[string]any{"id": 1, "name": "A"})
	limiter := rate.NewLimiter(rate.Inf, 1)
	for range 2 {
		c := srv.Client(basecamp.WithTransport(tr), basecamp.WithLimiter(limiter))
		_, err := c.GetProject(context.Background(), 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, srv.Count("projects/1.json"))
}

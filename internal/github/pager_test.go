package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher serves total results in pages of pageSize.
type fakeSearcher struct {
	total    int
	pageSize int
	served   int // items actually available, may be less than total
	calls    []int
	failOn   int
}

func (f *fakeSearcher) SearchRepositories(_ context.Context, term string, page int) (*SearchResponse, error) {
	f.calls = append(f.calls, page)
	if page == f.failOn {
		return nil, &NetworkError{StatusCode: http.StatusServiceUnavailable}
	}

	available := f.served
	if available == 0 {
		available = f.total
	}
	start := (page - 1) * f.pageSize
	resp := &SearchResponse{TotalCount: f.total}
	for i := start; i < start+f.pageSize && i < available; i++ {
		resp.Items = append(resp.Items, Repository{ID: int64(i), Name: fmt.Sprintf("%s-%d", term, i)})
	}
	return resp, nil
}

func TestFetchAll_StopsAtCap(t *testing.T) {
	s := &fakeSearcher{total: 2500, pageSize: 30}

	resp, err := FetchAll(context.Background(), s, "swift", 1000)
	require.NoError(t, err)

	assert.Equal(t, 2500, resp.TotalCount)
	assert.Len(t, resp.Items, 1000)
	// 34 pages of 30 reach 1020 >= 1000; no further request is made
	assert.Len(t, s.calls, 34)
	assert.Equal(t, int64(999), resp.Items[999].ID)
}

func TestFetchAll_DefaultCap(t *testing.T) {
	s := &fakeSearcher{total: 5000, pageSize: 100}

	resp, err := FetchAll(context.Background(), s, "go", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Items, DefaultMaxItems)
	assert.Len(t, s.calls, 10)
}

func TestFetchAll_StopsAtTotal(t *testing.T) {
	s := &fakeSearcher{total: 45, pageSize: 30}

	resp, err := FetchAll(context.Background(), s, "go", 1000)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 45)
	assert.Equal(t, []int{1, 2}, s.calls)
}

func TestFetchAll_StopsOnEmptyPage(t *testing.T) {
	// server claims more than it serves
	s := &fakeSearcher{total: 500, pageSize: 30, served: 60}

	resp, err := FetchAll(context.Background(), s, "go", 1000)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 60)
	assert.Equal(t, []int{1, 2, 3}, s.calls)
}

func TestFetchAll_Error(t *testing.T) {
	s := &fakeSearcher{total: 100, pageSize: 30, failOn: 2}

	_, err := FetchAll(context.Background(), s, "go", 1000)
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
}

func TestPager_Incremental(t *testing.T) {
	s := &fakeSearcher{total: 70, pageSize: 30}
	p := NewPager(s, "go", 1000)

	assert.True(t, p.HasMore(), "nothing fetched yet")

	items, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 30)
	assert.Equal(t, 70, p.TotalCount())
	assert.Equal(t, 1, p.Page())
	assert.True(t, p.HasMore())

	_, err = p.Next(context.Background())
	require.NoError(t, err)
	_, err = p.Next(context.Background())
	require.NoError(t, err)

	assert.Len(t, p.Items(), 70)
	assert.False(t, p.HasMore())

	items, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Len(t, s.calls, 3)
}

func TestPager_RetriesFailedPage(t *testing.T) {
	s := &fakeSearcher{total: 70, pageSize: 30, failOn: 2}
	p := NewPager(s, "go", 1000)

	_, err := p.Next(context.Background())
	require.NoError(t, err)

	_, err = p.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, p.Page())

	s.failOn = 0
	_, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, s.calls)
	assert.Len(t, p.Items(), 60)
}

func TestPager_ZeroResults(t *testing.T) {
	s := &fakeSearcher{total: 0, pageSize: 30}
	p := NewPager(s, "nothing-matches-this", 1000)

	_, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, p.HasMore())
	assert.Empty(t, p.Items())
}

func TestFetchAll_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			fmt.Fprint(w, `{"total_count":3,"items":[{"id":1},{"id":2}]}`)
			return
		}
		fmt.Fprint(w, `{"total_count":3,"incomplete_results":true,"items":[{"id":3}]}`)
	}))
	defer srv.Close()

	resp, err := FetchAll(context.Background(), newTestClient(t, srv.URL), "go", 1000)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 3)
	assert.True(t, resp.IncompleteResults)
}

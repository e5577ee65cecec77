package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/recordstore/internal/comparison"
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/query"
	"github.com/leengari/recordstore/internal/testutil"
)

var counterSchema = schema.MustDeclare("Counter", []schema.Group{{"name"}}, []schema.Group{{"bucket"}})

func seed(t *testing.T, c *Collection, records ...*data.Record) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, c.Push(r))
	}
}

func counters(t *testing.T, n int) *Collection {
	t.Helper()
	c := New("counters", counterSchema, WithLogger(testutil.Logger()))
	for i := range n {
		seed(t, c, testutil.Record(t, counterSchema, map[string]any{
			"name":   string(rune('a' + i)),
			"n":      i,
			"bucket": i % 3,
		}))
	}
	return c
}

func values(records []*data.Record, attr string) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r.Value(attr)
	}
	return out
}

func TestPushIssuesMonotonicIdentities(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newUsers(WithClock(testutil.Clock(start)))

	ann := testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30)
	bo := testutil.User(t, "bo@x.io", "Bo", "Kim", "Oslo", 12)
	seed(t, c, ann, bo)

	assert.Equal(t, int64(1), ann.ID())
	assert.Equal(t, int64(2), bo.ID())
	assert.Equal(t, start.Add(time.Second), ann.PushedAt())
	assert.Equal(t, 2, c.Len())

	stored, ok := c.Get(1)
	require.True(t, ok)
	assert.True(t, stored.Equal(ann))
	assert.Equal(t, ann.PushedAt(), stored.PushedAt())
}

func TestPushWithExplicitIdentityAdvancesCounter(t *testing.T) {
	c := newUsers()

	r := testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30)
	require.NoError(t, r.Stamp(10, time.Time{}))
	seed(t, c, r)

	next := testutil.User(t, "bo@x.io", "Bo", "Kim", "Oslo", 12)
	seed(t, c, next)

	assert.Equal(t, int64(10), r.ID())
	assert.Equal(t, int64(11), next.ID())
}

func TestPushRejectsForeignSchema(t *testing.T) {
	c := newUsers()
	r := testutil.Record(t, counterSchema, map[string]any{"name": "a"})

	assert.Error(t, c.Push(r))
	assert.Error(t, c.Push(nil))
	assert.Zero(t, c.Len())
}

func TestKeyReturnsDetachedCopies(t *testing.T) {
	c := newUsers()
	ann := testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30)
	require.NoError(t, ann.Set("tags", []any{"admin"}))
	seed(t, c, ann)

	got, err := c.All().Key("ann@x.io")
	require.NoError(t, err)
	assert.True(t, got.Equal(ann))

	require.NoError(t, got.Set("age", 99))
	got.Value("tags").([]any)[0] = "guest"
	require.NoError(t, ann.Set("age", 1))

	again, err := c.All().Key("ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, 30, again.Value("age"))
	assert.Equal(t, []any{"admin"}, again.Value("tags"))
}

func TestKeyComposite(t *testing.T) {
	c := newUsers()
	seed(t, c, testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30))

	for _, key := range []any{data.Tuple{"Ann", "Lee"}, []any{"Ann", "Lee"}} {
		got, err := c.All().Key(key)
		require.NoError(t, err)
		assert.Equal(t, "ann@x.io", got.Value("email"))
	}

	_, err := c.All().Key(data.Tuple{"Lee", "Ann"})
	assert.True(t, errors.IsDoesNotExist(err))
}

func TestKeyMissAndFilteredMiss(t *testing.T) {
	c := newUsers()
	seed(t, c,
		testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30),
		testutil.User(t, "bo@x.io", "Bo", "Kim", "Oslo", 12),
	)
	adults := c.All().Filter(query.Cond("age", comparison.GreaterEq, 18))

	_, err := adults.Key("nobody@x.io")
	require.True(t, errors.IsDoesNotExist(err))
	assert.False(t, errors.IsFiltered(err))

	_, err = adults.Key("bo@x.io")
	require.True(t, errors.IsDoesNotExist(err))
	assert.True(t, errors.IsFiltered(err))

	// Windowing does not apply to key lookups.
	got, err := adults.Head(0).Key("ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Value("first"))
}

func TestDuplicateKeyIsAtomic(t *testing.T) {
	c := newUsers()
	seed(t, c,
		testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30),
		testutil.User(t, "bo@x.io", "Bo", "Kim", "Bergen", 12),
	)

	err := c.Push(testutil.User(t, "ann@x.io", "Cy", "Park", "Oslo", 50))
	require.True(t, errors.IsDuplicateKey(err))
	assert.Equal(t, 2, c.Len())
	require.NoError(t, c.Verify())

	var ce *errors.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(1), ce.ExistingID)
	assert.Equal(t, []string{"email"}, ce.Group)
}

func TestRejectedUpdateKeepsUnrelatedKeys(t *testing.T) {
	c := newUsers()
	seed(t, c,
		testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30),
		testutil.User(t, "bo@x.io", "Bo", "Kim", "Bergen", 12),
	)

	bo, err := c.All().Key("bo@x.io")
	require.NoError(t, err)
	require.NoError(t, bo.Set("email", "bo2@x.io"))
	require.NoError(t, bo.Set("first", "Ann"))
	require.NoError(t, bo.Set("last", "Lee"))
	require.NoError(t, bo.Set("city", "Oslo"))

	err = c.Push(bo)
	require.True(t, errors.IsDuplicateKey(err))

	kept, err := c.All().Key("bo@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Bo", kept.Value("first"))

	_, err = c.All().Key(data.Tuple{"Bo", "Kim"})
	assert.NoError(t, err)
	_, err = c.All().Key("bo2@x.io")
	assert.True(t, errors.IsDoesNotExist(err))

	oslo, err := c.Lookup(schema.Group{"city"}, "Oslo")
	require.NoError(t, err)
	assert.Equal(t, 1, oslo.Count())
	require.NoError(t, c.Verify())
}

func TestUpdateReplacesStaleKeys(t *testing.T) {
	c := newUsers()
	seed(t, c, testutil.User(t, "ann@x.io", "Ann", "Lee", "Oslo", 30))

	ann, err := c.All().Key("ann@x.io")
	require.NoError(t, err)
	require.NoError(t, ann.Set("email", "ann@y.io"))
	require.NoError(t, ann.Set("city", "Bergen"))
	require.NoError(t, c.Push(ann))

	assert.Equal(t, 1, c.Len())
	_, err = c.All().Key("ann@x.io")
	assert.True(t, errors.IsDoesNotExist(err))

	got, err := c.All().Key("ann@y.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID())

	oslo, err := c.Lookup(schema.Group{"city"}, "Oslo")
	require.NoError(t, err)
	assert.Zero(t, oslo.Count())

	// The freed key value can be taken by another record.
	seed(t, c, testutil.User(t, "ann@x.io", "Ann", "Other", "Oslo", 20))
	require.NoError(t, c.Verify())
}

func TestUnsetKeysAreExemptFromUniqueness(t *testing.T) {
	c := newUsers()
	for range 3 {
		seed(t, c, testutil.Record(t, testutil.UserSchema, map[string]any{"first": "Ann"}))
	}
	assert.Equal(t, 3, c.Len())
	require.NoError(t, c.Verify())
}

func TestFilterOrderingAcrossPushOrder(t *testing.T) {
	c := New("counters", counterSchema, WithLogger(testutil.Logger()))
	for i, age := range []int{5, 10, 15} {
		seed(t, c, testutil.Record(t, counterSchema, map[string]any{
			"name": string(rune('a' + i)),
			"age":  age,
		}))
	}

	got := c.All().Filter(query.Cond("age", comparison.GreaterEq, 10)).Records()
	assert.Equal(t, []any{10, 15}, values(got, "age"))
}

func TestFilterCaseInsensitive(t *testing.T) {
	c := newUsers()
	seed(t, c, testutil.User(t, "ann@x.io", "ALICE", "Lee", "Oslo", 30))

	assert.Equal(t, 1, c.Where(query.Kwargs{"first__iequals": "Alice"}).Count())
	assert.Equal(t, 0, c.Where(query.Kwargs{"first": "Alice"}).Count())
	assert.Equal(t, 1, c.Where(query.Kwargs{"email__icontains": "ANN@"}).Count())
}

func TestWindows(t *testing.T) {
	c := counters(t, 10)
	all := c.All()

	for _, n := range []int{0, 1, 4, 10, 25} {
		assert.Equal(t, min(n, 10), all.Head(n).Count(), "head(%d)", n)
	}
	assert.Equal(t, []any{7, 8, 9}, values(all.Tail(3).Records(), "n"))
	assert.Equal(t, []any{2, 3, 4}, values(all.Slice(2, 5).Records(), "n"))
	assert.Equal(t, values(all.Head(5).Records()[2:], "n"), values(all.Slice(2, 5).Records(), "n"))
	assert.Equal(t, []any{7, 8}, values(all.Slice(-3, -1).Records(), "n"))

	first, ok := all.Filter(query.Cond("n", comparison.Greater, 3)).First()
	require.True(t, ok)
	assert.Equal(t, 4, first.Value("n"))

	last, ok := all.Head(6).Last()
	require.True(t, ok)
	assert.Equal(t, 5, last.Value("n"))

	_, ok = all.Filter(query.Cond("n", comparison.Greater, 100)).Last()
	assert.False(t, ok)
}

func TestCursorSeesLiveState(t *testing.T) {
	c := counters(t, 3)
	everything := c.All()
	capped := c.All().Head(4)

	assert.Equal(t, 3, everything.Count())
	assert.Equal(t, 3, capped.Count())

	seed(t, c,
		testutil.Record(t, counterSchema, map[string]any{"name": "x", "n": 3}),
		testutil.Record(t, counterSchema, map[string]any{"name": "y", "n": 4}),
	)

	assert.Equal(t, 5, everything.Count())
	assert.Equal(t, 4, capped.Count())
	assert.Equal(t, []any{3, 4}, values(everything.Tail(2).Records(), "n"))
}

func TestCollectYieldsCopies(t *testing.T) {
	c := counters(t, 2)

	for r := range c.All().All() {
		require.NoError(t, r.Set("n", -1))
	}
	assert.Equal(t, []any{0, 1}, values(c.All().Records(), "n"))
}

func TestLookupIndexGroup(t *testing.T) {
	c := counters(t, 9)

	cur, err := c.Lookup(schema.Group{"bucket"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 4, 7}, values(cur.Records(), "n"))

	// Numbers of other types address the same index entry.
	cur, err = c.Lookup(schema.Group{"bucket"}, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []any{2, 5, 8}, values(cur.Records(), "n"))

	cur, err = c.Lookup(schema.Group{"name"}, "c")
	require.NoError(t, err)
	assert.Equal(t, []any{2}, values(cur.Records(), "n"))

	_, err = c.Lookup(schema.Group{"n"}, 1)
	assert.Error(t, err)

	_, err = c.Lookup(schema.Group{"bucket"}, data.Tuple{1, 2})
	assert.Error(t, err)
}

func TestIndexedFilterAgreesWithScan(t *testing.T) {
	c := counters(t, 12)

	indexed := c.Where(query.Kwargs{"bucket": 0, "n__gte": 4}).Records()
	// A non-equality first filter forces a full scan.
	scanned := c.All().
		Filter(query.Cond("n", comparison.GreaterEq, 4)).
		Filter(query.Cond("bucket", comparison.Equals, 0)).
		Records()

	assert.Equal(t, []any{6, 9}, values(indexed, "n"))
	assert.Equal(t, values(scanned, "n"), values(indexed, "n"))

	assert.Zero(t, c.Where(query.Kwargs{"name": "zz"}).Count())
	assert.Zero(t, c.Where(query.Kwargs{"bucket": 7}).Count())
}

func TestIndexedFilterAgreesWithScanOnLargeNumbers(t *testing.T) {
	s := schema.MustDeclare("Big", []schema.Group{{"k"}}, nil)
	c := New("big", s, WithLogger(testutil.Logger()))

	const twoTo53 = 1 << 53
	seed(t, c,
		testutil.Record(t, s, map[string]any{"k": int64(twoTo53 + 1)}),
		testutil.Record(t, s, map[string]any{"k": float64(twoTo53)}),
	)

	err := c.Push(testutil.Record(t, s, map[string]any{"k": int64(twoTo53)}))
	assert.True(t, errors.IsDuplicateKey(err), "int64 2^53 equals float64 2^53")

	for _, v := range []any{float64(twoTo53), int64(twoTo53), int64(twoTo53 + 1)} {
		indexed := c.All().Filter(query.Cond("k", comparison.Equals, v)).Count()
		scanned := c.All().Head(100).Filter(query.Cond("k", comparison.Equals, v)).Count()
		assert.Equal(t, 1, indexed, "indexed count for %v", v)
		assert.Equal(t, scanned, indexed, "scan and index disagree for %v", v)
	}

	above := c.All().Filter(query.Cond("k", comparison.Greater, float64(twoTo53))).Records()
	require.Len(t, above, 1)
	assert.Equal(t, int64(twoTo53+1), above[0].Value("k"))
}

func TestSequenceKeysCompareElementwise(t *testing.T) {
	s := schema.MustDeclare("Tagged", []schema.Group{{"tags"}}, nil)
	c := New("tagged", s, WithLogger(testutil.Logger()))
	seed(t, c, testutil.Record(t, s, map[string]any{"tags": []any{1, "a"}}))

	err := c.Push(testutil.Record(t, s, map[string]any{"tags": []any{1.0, "a"}}))
	assert.True(t, errors.IsDuplicateKey(err))

	cond := query.Cond("tags", comparison.Equals, []any{1.0, "a"})
	assert.Equal(t, 1, c.All().Filter(cond).Count())
	assert.Equal(t, 1, c.All().Head(100).Filter(cond).Count())
}

func TestPushedAtIsUTC(t *testing.T) {
	c := counters(t, 1)
	r, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, time.UTC, r.PushedAt().Location())
}

func TestVerifyDetectsCorruption(t *testing.T) {
	c := counters(t, 3)
	require.NoError(t, c.Verify())

	delete(c.keyIndex, slot{group: 0, value: encodeKey("a")})
	assert.Error(t, c.Verify())
}

func TestEncodeKeyNormalizesNumbers(t *testing.T) {
	assert.Equal(t, encodeKey(1), encodeKey(uint8(1)))
	assert.Equal(t, encodeKey(int64(1)), encodeKey(1.0))
	assert.NotEqual(t, encodeKey(1), encodeKey("1"))
	assert.NotEqual(t, encodeKey(1.5), encodeKey(1))
	assert.Equal(t, encodeKey(data.Tuple{"a", 1}), encodeKey([]any{"a", 1.0}))
	assert.NotEqual(t, encodeKey(data.Tuple{"a,b"}), encodeKey(data.Tuple{"a", "b"}))
	assert.NotEqual(t, encodeKey(int64(1<<53+1)), encodeKey(float64(1<<53)))
	assert.Equal(t, encodeKey(uint64(1<<63)), encodeKey(float64(1<<63)))

	_, exact := encodeExact(struct{ X int }{1})
	assert.False(t, exact)
}

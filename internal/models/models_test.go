package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Thing {
	up := true
	leaf := &Thing{Kind: KindComment, ID: "leaf", Name: "t1_leaf", ParentID: "t1_mid", LinkID: "t3_post"}
	mid := &Thing{
		Kind:     KindComment,
		ID:       "mid",
		Name:     "t1_mid",
		ParentID: "t3_post",
		LinkID:   "t3_post",
		Likes:    &up,
		Replies: &Listing{
			Items:      []*Thing{leaf},
			ParentName: "t1_mid",
			LinkID:     "t3_post",
			More:       &MoreChildren{ID: "m1", Name: "more_m1", ParentID: "t1_mid", Count: 2, Children: []string{"x", "y"}},
		},
	}
	return &Thing{
		Kind:      KindSubmission,
		ID:        "post",
		Name:      "t3_post",
		Title:     "hello",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Comments:  &Listing{Items: []*Thing{mid}, ParentName: "t3_post", LinkID: "t3_post"},
	}
}

func TestClone_IsIndependent(t *testing.T) {
	orig := sampleTree()
	dup, err := orig.Clone()
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(orig, dup))

	dup.Title = "changed"
	dup.Comments.Items[0].Body = "changed"
	*dup.Comments.Items[0].Likes = false
	dup.Comments.Items[0].Replies.More.Children[0] = "changed"
	dup.Comments.Items[0].Replies.Items = append(dup.Comments.Items[0].Replies.Items, &Thing{Name: "t1_new"})

	assert.Equal(t, "hello", orig.Title)
	assert.Empty(t, orig.Comments.Items[0].Body)
	assert.True(t, *orig.Comments.Items[0].Likes)
	assert.Equal(t, []string{"x", "y"}, orig.Comments.Items[0].Replies.More.Children)
	assert.Len(t, orig.Comments.Items[0].Replies.Items, 1)
	assert.True(t, orig.CreatedAt.Equal(dup.CreatedAt))
}

func TestClone_Nil(t *testing.T) {
	var thing *Thing
	dup, err := thing.Clone()
	assert.NoError(t, err)
	assert.Nil(t, dup)
}

func TestChildren_DependsOnKind(t *testing.T) {
	post := sampleTree()
	assert.Same(t, post.Comments, post.Children())

	mid := post.Comments.Items[0]
	assert.Same(t, mid.Replies, mid.Children())

	l := &Listing{}
	post.SetChildren(l)
	assert.Same(t, l, post.Comments)
	assert.Nil(t, post.Replies)

	mid.SetChildren(nil)
	assert.Nil(t, mid.Replies)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, sampleTree().Count())
	assert.Equal(t, 1, (&Thing{Kind: KindComment}).Count())
}

func TestListing(t *testing.T) {
	var nilListing *Listing
	assert.Equal(t, 0, nilListing.Len())
	assert.False(t, nilListing.HasMore())
	assert.False(t, nilListing.Contains("t1_x"))

	l := sampleTree().Comments.Items[0].Replies
	assert.True(t, l.HasMore())
	assert.True(t, l.Contains("t1_leaf"))
	assert.False(t, l.Contains("t1_mid"))

	l.More = &MoreChildren{ID: "_", ParentID: "t1_mid"}
	assert.True(t, l.More.IsContinueThread())
	assert.True(t, l.HasMore())

	l.More = &MoreChildren{ID: "m2", Count: 4}
	assert.False(t, l.More.IsContinueThread())
	assert.False(t, l.HasMore())
}

func TestNames(t *testing.T) {
	assert.Equal(t, KindComment, KindOf("t1_abc"))
	assert.Equal(t, KindSubmission, KindOf("t3_abc"))
	assert.Equal(t, Kind(""), KindOf("abc"))

	assert.Equal(t, "t1_abc", Fullname(KindComment, "abc"))
	assert.Equal(t, "t1_abc", Fullname(KindComment, "t1_abc"))

	post := sampleTree()
	assert.Equal(t, "t3_post", post.SubmissionName())
	assert.Equal(t, "t3_post", post.Comments.Items[0].SubmissionName())

	l := NewListing(post.Comments.Items[0])
	assert.Equal(t, "t1_mid", l.ParentName)
	assert.Equal(t, "t3_post", l.LinkID)
}

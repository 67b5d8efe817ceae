package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-backend/apperr"
	"go-blog-backend/models"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&RegisterRequest{Username: "no spaces!", Email: "nope", Password: "123"})
	require.Error(t, err)

	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "email")
	assert.Equal(t, "must be at least 6 characters", appErr.Fields["password"])
}

func TestValidateAcceptsGoodRegistration(t *testing.T) {
	assert.NoError(t, Validate(&RegisterRequest{Username: "alice_01", Email: "a@x.io", Password: "secret1"}))
}

func TestProtectedArticleNeedsQuestionAndAnswer(t *testing.T) {
	err := Validate(&ArticleCreateRequest{Title: "t", Content: "c", IsProtected: true})
	require.Error(t, err)
	fields := apperr.As(err).Fields
	assert.Equal(t, "is required", fields["protection_question"])
	assert.Equal(t, "is required", fields["protection_answer"])

	assert.NoError(t, Validate(&ArticleCreateRequest{Title: "t", Content: "c"}))
}

func TestEmbeddedPageFieldsReportFlatNames(t *testing.T) {
	err := Validate(&ArticleQuery{PageQuery: PageQuery{Size: 500}, Sort: "oldest"})
	require.Error(t, err)
	fields := apperr.As(err).Fields
	assert.Equal(t, "must be at most 100", fields["size"])
	assert.Equal(t, "must be one of: new, hot, recommend", fields["sort"])
}

func TestSlugRule(t *testing.T) {
	assert.NoError(t, Validate(&ArticleCreateRequest{Title: "t", Content: "c", Slug: "hello-world-2"}))
	assert.Error(t, Validate(&ArticleCreateRequest{Title: "t", Content: "c", Slug: "Hello--World"}))
}

func TestPageNormalize(t *testing.T) {
	page, size := PageQuery{}.Normalize()
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = PageQuery{Page: 3, Size: 1000}.Normalize()
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)

	page, _ = PageQuery{Page: 1 << 62}.Normalize()
	assert.Equal(t, MaxPage, page)
	assert.Error(t, Validate(&PageQuery{Page: MaxPage + 1}))
}

func TestNewPagedNeverNull(t *testing.T) {
	p := NewPaged[TagResponse](nil, 0, 1, 10)
	assert.NotNil(t, p.Records)
}

func TestLockedHidesProtectedContent(t *testing.T) {
	d := NewArticleDetail(&models.Article{
		ID: 1, Title: "t", Content: "secret",
		IsProtected: true, ProtectionQuestion: "q?", ProtectionAnswer: "a",
	})
	locked := d.Locked()
	assert.Empty(t, locked.Content)
	assert.True(t, locked.IsLocked)
	assert.Equal(t, "q?", locked.ProtectionQuestion)
	assert.Equal(t, "secret", d.Content)

	open := NewArticleDetail(&models.Article{ID: 2, Content: "public"}).Locked()
	assert.Equal(t, "public", open.Content)
	assert.False(t, open.IsLocked)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi <b>there</b>", SanitizeUGC(` hi <b>there</b><script>alert(1)</script> `))
	assert.Equal(t, "bob", SanitizePlain("<i>bob</i>"))
	assert.Equal(t, "Tom & Jerry", SanitizePlain("Tom & Jerry"))
	assert.Equal(t, "1 < 2 & 3 > 2", SanitizePlain(" 1 < 2 & 3 > 2 "))
	assert.Equal(t, "x", SanitizePlain("x<script>alert(1)</script>"))
}

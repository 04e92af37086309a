package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPositiveIntLoose(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12 x 1kg", 12, true},
		{"12×1kg", 12, true},
		{"Pack of 24 units", 24, true},
		{"none", 0, false},
		{"0", 0, false},
		{"", 0, false},
		{"  6 ", 6, true},
	}
	for _, c := range cases {
		got, ok := ToPositiveIntLoose(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestToNumber(t *testing.T) {
	got, ok := ToNumber("1,250.5")
	assert.True(t, ok)
	assert.Equal(t, 1250.5, got)

	_, ok = ToNumber("abc")
	assert.False(t, ok)

	_, ok = ToNumber("  ")
	assert.False(t, ok)

	_, ok = ToNumber("Inf")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "dark-chocolate-70", Slugify("Dark Chocolate 70%!!"))
	assert.Equal(t, "soft-drinks", Slugify("  Soft -- Drinks "))
	assert.Equal(t, "a-b", Slugify("-a - b-"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestTitleCaseFromSlug(t *testing.T) {
	assert.Equal(t, "Dark Chocolate", TitleCaseFromSlug("dark-chocolate"))
	assert.Equal(t, "Coca Cola", TitleCaseFromSlug("coca_cola"))
	assert.Equal(t, "", TitleCaseFromSlug(""))
}

func TestNormalizePicture(t *testing.T) {
	assert.Equal(t, "https://x.test/a.png", NormalizePicture(`"https://x.test/a.png"`))
	assert.Equal(t, "https://x.test/a.png", NormalizePicture(`=HYPERLINK("https://x.test/a.png","Photo")`))
	assert.Equal(t, "https://x.test/a.png", NormalizePicture(`=hyperlink('https://x.test/a.png')`))
	assert.Equal(t, "/images/a.png", NormalizePicture(" /images/a.png "))
}

func TestFindPictureFallback(t *testing.T) {
	row := []string{"Chocolate", "123", "shelf.jpg", "https://x.test/b.png"}
	assert.Equal(t, "shelf.jpg", FindPictureFallback(row))

	row = []string{"Chocolate", "", `=HYPERLINK("https://x.test/b.png","b")`}
	assert.Equal(t, "https://x.test/b.png", FindPictureFallback(row))

	assert.Equal(t, "", FindPictureFallback([]string{"a", "b"}))
}

func TestLooksLikeImageFile(t *testing.T) {
	assert.True(t, LooksLikeImageFile("photo.JPG"))
	assert.True(t, LooksLikeImageFile("https://cdn.test/p.webp?v=2"))
	assert.False(t, LooksLikeImageFile("notes.txt"))
}

package validation

import (
	"bytes"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDTO struct {
	Phone string      `validate:"required,phone10"`
	Start string      `validate:"required,hhmm"`
	Name  string      `validate:"notblank"`
	Notes null.String `validate:"omitempty,max=5"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	ok := sampleDTO{Phone: "0991234567", Start: "07:00", Name: "Лаб", Notes: null.StringFrom("abc")}
	assert.NoError(t, v.Validate(&ok))

	assert.Error(t, v.Validate(&sampleDTO{Phone: "099123456", Start: "07:00", Name: "x"}), "9 цифр")
	assert.Error(t, v.Validate(&sampleDTO{Phone: "0991234567", Start: "7:00", Name: "x"}), "без ведущего нуля")
	assert.Error(t, v.Validate(&sampleDTO{Phone: "0991234567", Start: "07:00", Name: "   "}))
	assert.Error(t, v.Validate(&sampleDTO{Phone: "0991234567", Start: "07:00", Name: "x", Notes: null.StringFrom("слишком длинно")}))
}

func TestValidator_NullIsSkipped(t *testing.T) {
	v := New()
	dto := sampleDTO{Phone: "0991234567", Start: "23:59", Name: "x", Notes: null.String{}}
	assert.NoError(t, v.Validate(&dto))
}

func TestValidateFile(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	mimeType, err := ValidateFile(int64(len(png)), bytes.NewReader(png), "evidence_photo")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	text := []byte("просто текст, а не картинка")
	_, err = ValidateFile(int64(len(text)), bytes.NewReader(text), "evidence_photo")
	assert.Error(t, err)

	_, err = ValidateFile(11*1024*1024, bytes.NewReader(png), "evidence_photo")
	assert.Error(t, err, "превышен размер")
	_, err = ValidateFile(10, bytes.NewReader(png), "unknown")
	assert.Error(t, err)
}

func TestValidateFile_JPEGWithMarkup(t *testing.T) {
	content := append([]byte("\xFF\xD8\xFF\xE0"), []byte("<html><script>alert(1)</script></html>")...)

	mimeType, err := ValidateFile(int64(len(content)), bytes.NewReader(content), "evidence_photo")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)
	assert.Equal(t, ".jpg", ExtensionFor(mimeType))
	assert.Equal(t, ".webp", ExtensionFor("image/webp"))
	assert.Empty(t, ExtensionFor("text/html"))
}

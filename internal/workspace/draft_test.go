package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftSaveLoadWithAudio(t *testing.T) {
	s := NewDraftStore(t.TempDir())

	rec := &Recording{Filename: "sesion.webm", MIMEType: "audio/webm", Data: []byte("audio")}
	require.NoError(t, s.Save("notas de la sesión", rec))

	notes, got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "notas de la sesión", notes)
	require.NotNil(t, got)
	assert.Equal(t, "sesion.webm", got.Filename)
	assert.Equal(t, "audio/webm", got.MIMEType)
	assert.Equal(t, []byte("audio"), got.Data)
}

func TestDraftNotesOnly(t *testing.T) {
	s := NewDraftStore(t.TempDir())

	require.NoError(t, s.Save("solo notas", nil))

	notes, rec, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "solo notas", notes)
	assert.Nil(t, rec)
}

func TestDraftLoadEmpty(t *testing.T) {
	s := NewDraftStore(t.TempDir())
	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestDraftClear(t *testing.T) {
	s := NewDraftStore(t.TempDir())
	require.NoError(t, s.Save("notas", &Recording{Filename: "a", Data: []byte{1}}))
	require.NoError(t, s.Clear())

	_, _, err := s.Load()
	assert.ErrorIs(t, err, ErrNoDraft)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

package replay

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

func writeCapture(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.jsonl")
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDialer_ReplaysToEOF(t *testing.T) {
	path := writeCapture(t,
		`{"blinkStrength":85}`,
		`{"poorSignalLevel":0}`,
		`{"blinkStrength":30}`,
	)

	conn, err := Dialer{Path: path}.Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	n, err := conn.Write(thinkgear.DefaultHandshake().Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(thinkgear.DefaultHandshake().Bytes()), n)

	data, err := io.ReadAll(conn)
	require.NoError(t, err)

	samples, _ := thinkgear.Decode(data)
	require.Len(t, samples, 2)
	assert.Equal(t, 85, samples[0].BlinkStrength)
	assert.Equal(t, 30, samples[1].BlinkStrength)
}

func TestDialer_MissingFile(t *testing.T) {
	_, err := Dialer{Path: filepath.Join(t.TempDir(), "nope.jsonl")}.Dial(context.Background())
	assert.Error(t, err)
}

func TestDialer_FollowCloses(t *testing.T) {
	path := writeCapture(t, `{"blinkStrength":90}`)

	conn, err := Dialer{Path: path, Follow: true}.Dial(context.Background())
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), `"blinkStrength":90`)

	done := make(chan error, 1)
	go func() {
		_, err := conn.Read(buf)
		done <- err
	}()

	require.NoError(t, conn.Close())
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not unblock after Close")
	}
}

package watcher

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) run(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func fakeNotifier(goos string, rec *recorder, lookErr error, out *bytes.Buffer) *Notifier {
	return &Notifier{
		GOOS:     goos,
		LookPath: func(string) (string, error) { return "/usr/bin/notify-send", lookErr },
		Run:      rec.run,
		Fallback: out,
	}
}

var sample = Alert{Level: "info", Title: "New file: a.txt", Message: "/in/a.txt (3 B)"}

func TestNotify_Linux(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer

	require.NoError(t, fakeNotifier("linux", rec, nil, &out).Notify(sample))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"notify-send", "archivewatch: New file: a.txt", "/in/a.txt (3 B)"}, rec.calls[0])
	assert.Empty(t, out.String())
}

func TestNotify_Darwin(t *testing.T) {
	rec := &recorder{}
	var out bytes.Buffer

	require.NoError(t, fakeNotifier("darwin", rec, nil, &out).Notify(sample))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.True(t, strings.Contains(rec.calls[0][2], `subtitle "New file: a.txt"`))
}

func TestNotify_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		lookErr error
		runErr  error
	}{
		{"unsupported platform", "windows", nil, nil},
		{"notify-send missing", "linux", errors.New("not found"), nil},
		{"notify-send fails", "linux", nil, errors.New("exit 1")},
		{"osascript fails", "darwin", nil, errors.New("exit 1")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			n := fakeNotifier(tc.goos, &recorder{err: tc.runErr}, tc.lookErr, &out)

			require.NoError(t, n.Notify(sample))
			assert.Equal(t, "[info] New file: a.txt: /in/a.txt (3 B)\n", out.String())
		})
	}
}

package fetcher_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okian/starboard/internal/fetcher"
	. "github.com/smartystreets/goconvey/convey"
)

const snapshot2022 = `{"event":"2022","owner_id":1,"members":{"1":{"id":1,"name":"alice","stars":2}}}`

// eventSite serves 2022 and 2024, answers 404 for 2023 and the login page
// for anything else.
func eventSite(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		c, err := r.Cookie("session")
		if err != nil || c.Value != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/2022/leaderboard/private/view/42.json":
			_, _ = w.Write([]byte(snapshot2022))
		case "/2024/leaderboard/private/view/42.json":
			_, _ = w.Write([]byte(`{"event":"2024","members":{}}`))
		case "/2023/leaderboard/private/view/42.json":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>log in</html>"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func config(base, dir string, from, to int) fetcher.Config {
	return fetcher.Config{
		BaseURL: base,
		Session: "secret",
		Board:   "42",
		Dir:     dir,
		From:    from,
		To:      to,
		Timeout: 5 * time.Second,
		Workers: 2,
	}
}

func TestRun(t *testing.T) {
	Convey("Given an event site with one missing year", t, func() {
		var hits int64
		srv := eventSite(t, &hits)
		dir := filepath.Join(t.TempDir(), "data")

		f, err := fetcher.New(config(srv.URL, dir, 2022, 2024))
		So(err, ShouldBeNil)

		Convey("When every year is downloaded", func() {
			report, err := f.Run(context.Background())

			Convey("Then the missing year is reported without failing the run", func() {
				So(err, ShouldBeNil)
				So(len(report.Results), ShouldEqual, 3)
				So(report.Failed(), ShouldEqual, 1)
				So(report.Results[1].Year, ShouldEqual, 2023)
				So(report.Results[1].Status, ShouldEqual, http.StatusNotFound)
				So(errors.Is(report.Results[1].Err, fetcher.ErrStatus), ShouldBeTrue)
				So(atomic.LoadInt64(&hits), ShouldEqual, int64(3))
			})

			Convey("And the other years are saved verbatim", func() {
				raw, err := os.ReadFile(filepath.Join(dir, "2022.json"))
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, snapshot2022)
				So(report.Results[0].Bytes, ShouldEqual, int64(len(snapshot2022)))
				_, err = os.Stat(filepath.Join(dir, "2023.json"))
				So(os.IsNotExist(err), ShouldBeTrue)
			})

			Convey("And the manifest lists the saved files", func() {
				So(report.Manifest, ShouldResemble, []string{"2022.json", "2024.json"})
				raw, err := os.ReadFile(filepath.Join(dir, fetcher.ManifestName))
				So(err, ShouldBeNil)
				var names []string
				So(json.Unmarshal(raw, &names), ShouldBeNil)
				So(names, ShouldResemble, report.Manifest)
			})

			Convey("And the report prints a line per year", func() {
				var buf bytes.Buffer
				So(report.Print(&buf), ShouldBeNil)
				out := buf.String()
				So(out, ShouldContainSubstring, "Saved data for 2022")
				So(out, ShouldContainSubstring, "Failed for 2023")
				So(out, ShouldContainSubstring, "2 of 3 years saved")
			})
		})
	})

	Convey("Given a stale session", t, func() {
		var hits int64
		srv := eventSite(t, &hits)
		dir := t.TempDir()
		cfg := config(srv.URL, dir, 2025, 2025)

		f, err := fetcher.New(cfg)
		So(err, ShouldBeNil)

		Convey("When the site answers with its login page", func() {
			report, err := f.Run(context.Background())

			Convey("Then nothing is saved", func() {
				So(err, ShouldBeNil)
				So(errors.Is(report.Results[0].Err, fetcher.ErrNotJSON), ShouldBeTrue)
				So(report.Manifest, ShouldBeEmpty)
			})
		})
	})
}

func TestManifestKeepsEarlierDownloads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2019.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2018.json"), []byte(`{}`), 0o600))

	names, err := fetcher.WriteManifest(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"2018.json", "2019.json"}, names)
}

func TestRunCancelled(t *testing.T) {
	var hits int64
	srv := eventSite(t, &hits)
	cfg := config(srv.URL, t.TempDir(), 2015, 2024)
	cfg.Rate = 0.01

	f, err := fetcher.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = f.Run(ctx)
	require.Error(t, err)
	require.LessOrEqual(t, atomic.LoadInt64(&hits), int64(1))
}

func TestURL(t *testing.T) {
	f, err := fetcher.New(config("https://adventofcode.com", t.TempDir(), 2023, 2023))
	require.NoError(t, err)
	require.Equal(t, "https://adventofcode.com/2023/leaderboard/private/view/42.json", f.URL(2023))
}

func TestResolveSession(t *testing.T) {
	Convey("Given the three session sources", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, fetcher.ConfigFile)
		So(os.WriteFile(path, []byte(`{"session":"from-file"}`), 0o600), ShouldBeNil)
		env := func(v string) func(string) (string, bool) {
			return func(key string) (string, bool) {
				if key == fetcher.SessionEnv && v != "" {
					return v, true
				}
				return "", false
			}
		}

		Convey("Then the flag wins", func() {
			s, err := fetcher.ResolveSession("from-flag", env("from-env"), path)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "from-flag")
		})

		Convey("And the environment beats the file", func() {
			s, err := fetcher.ResolveSession("", env("from-env"), path)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "from-env")
		})

		Convey("And the file is the last resort", func() {
			s, err := fetcher.ResolveSession("  ", env(""), path)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "from-file")
		})

		Convey("And nothing anywhere is an error", func() {
			_, err := fetcher.ResolveSession("", env(""), filepath.Join(dir, "missing.json"))
			So(errors.Is(err, fetcher.ErrNoSession), ShouldBeTrue)
		})

		Convey("And a malformed file is reported", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{"), 0o600), ShouldBeNil)
			_, err := fetcher.ResolveSession("", env(""), bad)
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "parse"), ShouldBeTrue)
		})
	})
}

func TestConfig(t *testing.T) {
	Convey("Given the defaults", t, func() {
		cfg := fetcher.Defaults()

		Convey("Then the range starts with the first event", func() {
			So(cfg.From, ShouldEqual, fetcher.FirstYear)
			So(cfg.Board, ShouldEqual, fetcher.DefaultBoard)
		})

		Convey("And a missing session fails validation", func() {
			So(errors.Is(cfg.Validate(), fetcher.ErrNoSession), ShouldBeTrue)
		})

		Convey("And a reversed range fails validation", func() {
			cfg.Session = "x"
			cfg.From, cfg.To = 2024, 2020
			So(errors.Is(cfg.Validate(), fetcher.ErrYearRange), ShouldBeTrue)
		})
	})

	Convey("Given dates around the event start", t, func() {
		So(fetcher.LatestYear(time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2024)
		So(fetcher.LatestYear(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 2025)
	})
}

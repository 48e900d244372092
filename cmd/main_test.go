package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given the gridelo entry point", t, func() {
		ctx := context.Background()
		var stdout, stderr bytes.Buffer

		convey.Convey("When help is requested", func() {
			code := run(ctx, []string{"--help"}, &stdout, &stderr)

			convey.Convey("Then every workflow command is listed", func() {
				convey.So(code, convey.ShouldEqual, 0)
				for _, name := range []string{"history", "composite", "init", "predict", "fuse", "ingest", "report", "matchup", "standings", "summary"} {
					convey.So(stdout.String(), convey.ShouldContainSubstring, name)
				}
			})
		})

		convey.Convey("When the command is unknown", func() {
			code := run(ctx, []string{"serve"}, &stdout, &stderr)

			convey.Convey("Then the exit code is non-zero and the error is logged", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "command failed")
			})
		})

		convey.Convey("When history runs against an empty data directory", func() {
			dir := t.TempDir()
			code := run(ctx, []string{"--data-dir", dir, "history"}, &stdout, &stderr)

			convey.Convey("Then the missing matches file fails the command", func() {
				convey.So(code, convey.ShouldEqual, 1)
				_, err := os.Stat(filepath.Join(dir, "rating_history.csv"))
				convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
			})
		})
	})
}

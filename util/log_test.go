package util_test

import (
	"bytes"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bf2wasm/util"
)

var _ = Describe("Logging", func() {
	DescribeTable("ParseLevel",
		func(in string, want slog.Level) {
			lvl, err := util.ParseLevel(in)

			Expect(err).NotTo(HaveOccurred())
			Expect(lvl).To(Equal(want))
		},
		Entry("trace", "trace", util.LevelTrace),
		Entry("debug", "DEBUG", slog.LevelDebug),
		Entry("empty", "", slog.LevelInfo),
		Entry("warning", "warning", slog.LevelWarn),
		Entry("error", "error", slog.LevelError),
	)

	It("should reject unknown levels", func() {
		_, err := util.ParseLevel("loud")

		Expect(err).To(HaveOccurred())
	})

	It("should name the trace level in JSON output", func() {
		var buf bytes.Buffer
		l := util.NewLogger(&buf, util.LevelTrace, true)

		util.TraceTo(l, "lexed", "tokens", 3)

		var rec map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &rec)).To(Succeed())
		Expect(rec["level"]).To(Equal("TRACE"))
		Expect(rec["msg"]).To(Equal("lexed"))
		Expect(rec["tokens"]).To(BeNumerically("==", 3))
	})

	It("should drop trace records at info level", func() {
		var buf bytes.Buffer
		l := util.NewLogger(&buf, slog.LevelInfo, false)

		util.TraceTo(l, "hidden")
		l.Info("shown")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("shown"))
	})
})

package main

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

var _ = Describe("run", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	grep := func(input string, args ...string) int {
		return run(args, strings.NewReader(input), stdout, stderr)
	}

	It("should exit 0 and echo a matching line", func() {
		code := grep("cat and cat\n", "-E", `(cat) and \1`)

		Expect(code).To(Equal(exitMatch))
		Expect(stdout.String()).To(Equal("cat and cat\n"))
	})

	It("should exit 1 on a line that does not match", func() {
		code := grep("cat and dog\n", "-E", `(cat) and \1`)

		Expect(code).To(Equal(exitNoMatch))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should not echo in quiet mode", func() {
		code := grep("hello\n", "-q", "-E", "ell")

		Expect(code).To(Equal(exitMatch))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should strip the line terminator before matching", func() {
		Expect(grep("abc\r\n", "-E", "^abc$")).To(Equal(exitMatch))
		Expect(stdout.String()).To(Equal("abc\n"))
	})

	It("should accept input without a trailing newline", func() {
		Expect(grep("abc", "-E", "^abc$")).To(Equal(exitMatch))
	})

	It("should only read the first line", func() {
		Expect(grep("one\ntwo\n", "-E", "two")).To(Equal(exitNoMatch))
	})

	It("should treat empty input as an empty line", func() {
		Expect(grep("", "-E", "^$")).To(Equal(exitMatch))
		Expect(grep("", "-E", "a")).To(Equal(exitNoMatch))
	})

	It("should exit 2 and log on an invalid pattern", func() {
		code := grep("abc\n", "-E", "[abc")

		Expect(code).To(Equal(exitError))
		Expect(stdout.String()).To(BeEmpty())
		Expect(stderr.String()).To(ContainSubstring("invalid pattern"))
		Expect(stderr.String()).To(ContainSubstring("unclosed character class"))
	})

	It("should exit 2 without a pattern", func() {
		Expect(grep("abc\n")).To(Equal(exitError))
		Expect(stderr.String()).To(ContainSubstring("missing -E"))
	})

	It("should exit 2 on unknown flags and stray arguments", func() {
		Expect(grep("abc\n", "-x", "-E", "a")).To(Equal(exitError))
		Expect(grep("abc\n", "-E", "a", "extra")).To(Equal(exitError))
	})

	It("should accept an empty pattern", func() {
		Expect(grep("anything\n", "-E", "")).To(Equal(exitMatch))
	})

	It("should exit 2 when stdin fails", func() {
		code := run([]string{"-E", "a"}, failingReader{}, stdout, stderr)

		Expect(code).To(Equal(exitError))
		Expect(stderr.String()).To(ContainSubstring("broken pipe"))
	})

	It("should dump the program to stderr", func() {
		Expect(grep("ab\n", "-q", "-dump", "-E", "ab")).To(Equal(exitMatch))
		Expect(stderr.String()).To(ContainSubstring("match"))
	})

	It("should log search details in debug mode", func() {
		Expect(grep("xfoo\n", "-q", "-debug", "-E", "fo+")).To(Equal(exitMatch))
		Expect(stderr.String()).To(ContainSubstring("search finished"))
		Expect(stderr.String()).To(ContainSubstring("Prefilter"))
	})

	It("should give up on a pathological line under a step budget", func() {
		line := strings.Repeat("a", 28) + "c\n"
		code := grep(line, "-max-steps", "1000", "-debug", "-E", "(a*)*b")

		Expect(code).To(Equal(exitNoMatch))
		Expect(stderr.String()).To(ContainSubstring("step_limit_hits"))
	})
})

package progress

import "io"

// CountingReader reports read progress against an expected total.
type CountingReader struct {
	r        io.Reader
	total    int64
	read     int64
	reporter *Reporter
}

// NewCountingReader wraps r. With total <= 0 no percentages are reported.
func NewCountingReader(r io.Reader, total int64, reporter *Reporter) *CountingReader {
	return &CountingReader{r: r, total: total, reporter: reporter}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if n > 0 && c.total > 0 {
		c.reporter.Uploading(int(c.read * 100 / c.total))
	}
	return n, err
}

// BytesRead is the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.read
}

package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"timelapse/internal/logging"
)

// byteRange is a resolved, inclusive byte span within the asset.
type byteRange struct {
	start  int64
	end    int64
	length int64
}

var errUnsatisfiableRange = errors.New("requested range not satisfiable")

// handleAsset serves the published video. Single byte ranges get a proper
// partial response so browser seek works; multi-part and malformed range
// headers fall back to the full asset, which RFC 9110 permits.
func (s *apiServer) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, err := os.Open(s.assetPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, http.StatusNotFound, "no timelapse video available")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to open video asset")
		return
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "no timelapse video available")
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader != "" {
		span, ok, err := parseByteRange(rangeHeader, size)
		if err != nil {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			s.writeError(w, http.StatusRequestedRangeNotSatisfiable, err.Error())
			return
		}
		if ok {
			s.serveRange(w, r, file, span, size)
			return
		}
	}

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, file); err != nil {
		s.log().Debug("asset stream interrupted", logging.Error(err))
	}
}

func (s *apiServer) serveRange(w http.ResponseWriter, r *http.Request, file *os.File, span byteRange, size int64) {
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", span.start, span.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(span.length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := file.Seek(span.start, io.SeekStart); err != nil {
		s.log().Warn("asset seek failed", logging.Error(err))
		return
	}
	if _, err := io.CopyN(w, file, span.length); err != nil {
		s.log().Debug("asset stream interrupted", logging.Error(err))
	}
}

// parseByteRange resolves a Range header against the asset size. It returns
// ok=false when the header is malformed or requests multiple ranges, in which
// case the caller serves the whole asset. A syntactically valid range that
// lies entirely past the end of the asset returns errUnsatisfiableRange.
func parseByteRange(header string, size int64) (byteRange, bool, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false, nil
	}
	spec := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if spec == "" || strings.Contains(spec, ",") {
		return byteRange{}, false, nil
	}

	first, last, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false, nil
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	var span byteRange
	switch {
	case first == "" && last == "":
		return byteRange{}, false, nil
	case first == "":
		// Suffix form: the final N bytes.
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, false, nil
		}
		if n > size {
			n = size
		}
		if n == 0 {
			return byteRange{}, false, errUnsatisfiableRange
		}
		span.start = size - n
		span.end = size - 1
	default:
		start, err := strconv.ParseInt(first, 10, 64)
		if err != nil || start < 0 {
			return byteRange{}, false, nil
		}
		if start >= size {
			return byteRange{}, false, errUnsatisfiableRange
		}
		end := size - 1
		if last != "" {
			end, err = strconv.ParseInt(last, 10, 64)
			if err != nil {
				return byteRange{}, false, nil
			}
			if end < start {
				return byteRange{}, false, nil
			}
			if end > size-1 {
				end = size - 1
			}
		}
		span.start = start
		span.end = end
	}

	span.length = span.end - span.start + 1
	return span, true, nil
}

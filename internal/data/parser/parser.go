package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-health-dashboard/internal/core/model"
	"github.com/penwyp/go-health-dashboard/internal/util"
)

// Parser reads store exports. A file is either JSON lines (one row per line)
// or a single JSON array of rows, which is what a table dump looks like.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cachedFile
}

// cachedFile is reused while the file's size and mtime are unchanged.
type cachedFile struct {
	size    int64
	modTime time.Time
	records []model.RawLogRecord
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Records []model.RawLogRecord
	Error   error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cachedFile),
	}
}

// ParseFile parses one export file. Unreadable rows are skipped.
func (p *Parser) ParseFile(path string) ([]model.RawLogRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if c, ok := p.cache[path]; ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		p.mu.Unlock()
		return c.records, nil
	}
	p.mu.Unlock()

	util.LogDebugf("Start parsing file: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ParseReader(file, path)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[path] = cachedFile{size: info.Size(), modTime: info.ModTime(), records: records}
	p.mu.Unlock()

	return records, nil
}

// Forget drops a file from the cache.
func (p *Parser) Forget(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses files concurrently. The channel is closed once every
// file has been reported.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	semaphore := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			records, err := p.ParseFile(f)
			if err != nil {
				util.LogDebugf("File parsing failed: %s - %v", f, err)
			}
			results <- ParseResult{File: f, Records: records, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Parsed %d files in %v", len(files), time.Since(start))
	}()

	return results
}

// ParseReader decodes rows from r. name is only used in log messages.
func ParseReader(r io.Reader, name string) ([]model.RawLogRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return []model.RawLogRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		return parseArray(br, name)
	}
	return parseLines(br, name)
}

func parseLines(r io.Reader, name string) ([]model.RawLogRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	records := make([]model.RawLogRecord, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec model.RawLogRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", name, lineNo, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	return records, nil
}

func parseArray(r io.Reader, name string) ([]model.RawLogRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows []any
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	records := make([]model.RawLogRecord, 0, len(rows))
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			util.LogDebugf("Skip non-object row %s[%d]", name, i)
			continue
		}
		records = append(records, model.FromRow(m))
	}
	return records, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return 0, err
		}
	}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

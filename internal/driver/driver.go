// Package driver runs the batch analysis pipeline: list the workspace,
// lex and parse in parallel, then build, register, and analyze every
// document in a stable order.
package driver

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/parser"
	"uscript/internal/sema"
	"uscript/internal/source"
	"uscript/internal/symbols"
	"uscript/internal/token"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageLoad Stage = iota
	StageParse
	StageResolve
	StageAnalyze
)

// Status qualifies a progress event.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress update. File is empty for workspace-level events.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// Options configures AnalyzeWorkspace.
type Options struct {
	// Jobs bounds parse parallelism; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the per-file bags and the merged result.
	MaxDiagnostics int
	// Sema configures the diagnostic pass.
	Sema sema.Options
	// Events, when non-nil, receives progress updates. The channel is
	// closed when the run finishes.
	Events chan<- Event
	// Cache, when non-nil, short-circuits unchanged workspaces.
	Cache *DiskCache
}

// Result is the outcome of a workspace run.
type Result struct {
	Files    []string
	FileSet  *source.FileSet
	Registry *symbols.Registry
	Docs     []*symbols.Document
	Bag      *diag.Bag
	// FromCache means diagnostics were restored from disk; Registry and
	// Docs are nil in that case.
	FromCache bool
}

type parseResult struct {
	path   string
	fileID source.FileID
	tokens []token.Token
	root   ast.FileID
	ast    *ast.Builder
	bag    *diag.Bag
}

// ListScriptFiles returns every *.uc file under dir, sorted. A dir that
// is itself a script file yields a single-element list.
func ListScriptFiles(dir string) ([]string, error) {
	if isScriptFile(dir) {
		return []string{dir}, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isScriptFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func isScriptFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".uc")
}

// Tokenize lexes a single file for the token dump command.
func Tokenize(path string, maxDiagnostics int) ([]token.Token, *diag.Bag, *source.FileSet, error) {
	fileSet := source.NewFileSet()
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.Scan(fileSet.Get(id), diag.BagReporter{Bag: bag})
	return tokens, bag, fileSet, nil
}

// AnalyzeWorkspace runs the full pipeline over a directory tree.
func AnalyzeWorkspace(ctx context.Context, dir string, opts Options) (*Result, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	emit := func(ev Event) {
		if opts.Events != nil {
			opts.Events <- ev
		}
	}
	if opts.Events != nil {
		defer close(opts.Events)
	}

	files, err := ListScriptFiles(dir)
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	result := &Result{
		Files:   files,
		FileSet: fileSet,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	if len(files) == 0 {
		return result, nil
	}

	// Preload sequentially; FileSet is not safe for concurrent writes.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(Event{File: path, Stage: StageLoad, Status: StatusWorking})
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[path] = loadErr
			continue
		}
		fileIDs[path] = id
	}

	// A workspace that loaded cleanly and has not changed since the last
	// run can reuse its diagnostics wholesale. Partial loads skip the
	// cache: the digest would not describe the full workspace.
	var digest Digest
	cacheable := opts.Cache != nil && len(loadErrors) == 0
	if cacheable {
		digest = workspaceDigest(files, fileIDs, fileSet, opts.Sema)
		var payload DiskPayload
		if hit, getErr := opts.Cache.Get(digest, &payload); getErr == nil && hit {
			result.Bag = unpackBag(&payload, fileSet, max(opts.MaxDiagnostics, len(payload.Items)))
			result.FromCache = true
			for _, path := range files {
				emit(Event{File: path, Stage: StageAnalyze, Status: StatusDone})
			}
			return result, nil
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Parse fan-out. Result slots are per-index, so no mutex is needed.
	parsed := make([]parseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(Event{File: path, Stage: StageParse, Status: StatusWorking})

			bag := diag.NewBag(opts.MaxDiagnostics)
			pr := parseResult{path: path, bag: bag}
			if loadErr, failed := loadErrors[path]; failed {
				bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()))
				parsed[i] = pr
				emit(Event{File: path, Stage: StageParse, Status: StatusError})
				return nil
			}

			pr.fileID = fileIDs[path]
			reporter := diag.BagReporter{Bag: bag}
			pr.tokens = lexer.Scan(fileSet.Get(pr.fileID), reporter)
			pr.ast = ast.NewBuilder(ast.Hints{})
			res := parser.ParseFile(pr.tokens, pr.ast, parser.Options{
				Reporter:  reporter,
				MaxErrors: uint(opts.MaxDiagnostics),
			})
			pr.root = res.File
			parsed[i] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// Build and register in list order so cross-document resolution sees
	// a deterministic registry.
	registry := symbols.NewRegistry()
	docs := make([]*symbols.Document, len(files))
	for i := range parsed {
		pr := &parsed[i]
		if pr.ast == nil {
			continue
		}
		emit(Event{File: pr.path, Stage: StageResolve, Status: StatusWorking})
		doc := symbols.NewDocument(pr.path, pr.fileID, pr.ast, pr.tokens, pr.root,
			diag.BagReporter{Bag: pr.bag})
		doc.Build()
		registry.Add(doc)
		docs[i] = doc
	}

	for i := range parsed {
		pr := &parsed[i]
		if docs[i] != nil {
			emit(Event{File: pr.path, Stage: StageAnalyze, Status: StatusWorking})
			docs[i].Index()
			sema.Analyze(docs[i], diag.BagReporter{Bag: pr.bag}, opts.Sema)
		}
		status := StatusDone
		if pr.bag.HasErrors() {
			status = StatusError
		}
		emit(Event{File: pr.path, Stage: StageAnalyze, Status: status})
		result.Bag.Merge(pr.bag)
	}
	result.Bag.Sort()
	result.Bag.Dedup()
	result.Registry = registry
	result.Docs = docs

	if cacheable {
		// Best effort; an unwritable cache never fails the run.
		_ = opts.Cache.Put(digest, packBag(result.Bag, fileSet))
	}
	return result, nil
}

// workspaceDigest fingerprints the workspace contents plus the analysis
// options that shape its diagnostics.
func workspaceDigest(files []string, fileIDs map[string]source.FileID, fs *source.FileSet, opts sema.Options) Digest {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], diskCacheSchemaVersion)
	h.Write(buf[:2])
	if opts.CheckTypes {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(opts.Generation))
	h.Write(buf[:])
	for _, path := range files {
		h.Write([]byte(path))
		h.Write([]byte{0})
		f := fs.Get(fileIDs[path])
		h.Write(f.Hash[:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

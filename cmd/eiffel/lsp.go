package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/mgomes/eiffel/eiffel"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var parseErrorPattern = regexp.MustCompile(`parse error at ([0-9]+):([0-9]+): ([^\n]+)`)

const lspName = "eiffel-lsp"

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	engine *eiffel.Engine
	docs   map[string]string
}

func newLSPServer(in io.Reader, out io.Writer) *lspServer {
	return &lspServer{
		reader: bufio.NewReader(in),
		writer: bufio.NewWriter(out),
		engine: eiffel.MustNewEngine(eiffel.Config{}),
		docs:   make(map[string]string),
	}
}

func runLSP() error {
	return newLSPServer(os.Stdin, os.Stdout).serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}
		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		syncKind := protocol.TextDocumentSyncKindFull
		version := "0.1.0"
		return s.reply(incoming, protocol.InitializeResult{
			Capabilities: protocol.ServerCapabilities{
				TextDocumentSync: &protocol.TextDocumentSyncOptions{
					OpenClose: boolPtr(true),
					Change:    &syncKind,
				},
				HoverProvider:      true,
				CompletionProvider: &protocol.CompletionOptions{},
			},
			ServerInfo: &protocol.InitializeResultServerInfo{Name: lspName, Version: &version},
		})
	case "initialized", "exit":
		return nil
	case "shutdown":
		return s.reply(incoming, nil)
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		uri := string(params.TextDocument.URI)
		s.docs[uri] = params.TextDocument.Text
		return []lspOutboundMessage{s.publishDiagnostics(uri)}
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
			return nil
		}
		whole, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
		if !ok {
			return nil
		}
		uri := string(params.TextDocument.URI)
		s.docs[uri] = whole.Text
		return []lspOutboundMessage{s.publishDiagnostics(uri)}
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		delete(s.docs, string(params.TextDocument.URI))
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			Method:  protocol.ServerTextDocumentPublishDiagnostics,
			Params:  protocol.PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []protocol.Diagnostic{}},
		}}
	case "textDocument/completion":
		var params protocol.CompletionParams
		_ = json.Unmarshal(incoming.Params, &params)
		return s.reply(incoming, protocol.CompletionList{
			IsIncomplete: false,
			Items:        completionItems(s.docs[string(params.TextDocument.URI)]),
		})
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params protocol.HoverParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
			}}
		}
		source := s.docs[string(params.TextDocument.URI)]
		word := wordAtPosition(source, int(params.Position.Line), int(params.Position.Character))
		if word == "" {
			return s.reply(incoming, nil)
		}
		return s.reply(incoming, &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: fmt.Sprintf("`%s`\n\n%s", word, describeWord(source, word)),
			},
		})
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Error:   &lspResponseError{Code: -32601, Message: "method not found"},
		}}
	}
}

// reply answers a request; notifications get no response.
func (s *lspServer) reply(incoming lspInboundMessage, result any) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: result}}
}

func (s *lspServer) publishDiagnostics(uri string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  protocol.ServerTextDocumentPublishDiagnostics,
		Params: protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentUri(uri),
			Diagnostics: diagnosticsForSource(s.engine, s.docs[uri]),
		},
	}
}

// diagnosticsForSource reports parse errors, or the analyzer's warnings when the
// source parses.
func diagnosticsForSource(engine *eiffel.Engine, source string) []protocol.Diagnostic {
	script, err := engine.Compile(source)
	if err == nil {
		warnings := analyzeProgramWarnings(script)
		out := make([]protocol.Diagnostic, 0, len(warnings))
		for _, warning := range warnings {
			out = append(out, newDiagnostic(warning.Pos.Line, warning.Pos.Column, protocol.DiagnosticSeverityWarning, warning.Message))
		}
		return out
	}

	matches := parseErrorPattern.FindAllStringSubmatch(err.Error(), -1)
	if len(matches) == 0 {
		return []protocol.Diagnostic{newDiagnostic(1, 1, protocol.DiagnosticSeverityError, err.Error())}
	}
	out := make([]protocol.Diagnostic, 0, len(matches))
	for _, match := range matches {
		line, _ := strconv.Atoi(match[1])
		column, _ := strconv.Atoi(match[2])
		out = append(out, newDiagnostic(line, column, protocol.DiagnosticSeverityError, match[3]))
	}
	return out
}

// newDiagnostic converts a 1-based source position to a one-character LSP range.
func newDiagnostic(line, column int, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	start := protocol.Position{
		Line:      protocol.UInteger(max(0, line-1)),
		Character: protocol.UInteger(max(0, column-1)),
	}
	end := start
	end.Character++
	source := lspName
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

type symbol struct {
	kind   protocol.CompletionItemKind
	detail string
}

// documentSymbols collects the classes, attributes and routines declared in source.
// Unparseable sources contribute nothing.
func documentSymbols(source string) map[string]symbol {
	out := make(map[string]symbol)
	program, err := eiffel.Parse(source)
	if err != nil {
		return out
	}
	for _, class := range program.Classes() {
		out[class.Name] = symbol{kind: protocol.CompletionItemKindClass, detail: "class"}
		for _, feature := range class.Features {
			switch f := feature.(type) {
			case *eiffel.DeclarationList:
				for _, decl := range f.Decls {
					out[decl.Name] = symbol{kind: protocol.CompletionItemKindField, detail: fmt.Sprintf("attribute %s: %s of %s", decl.Name, decl.Type, class.Name)}
				}
			case *eiffel.FeatureBody:
				out[f.Name] = symbol{kind: protocol.CompletionItemKindFunction, detail: "routine " + routineSignature(class.Name, f)}
			}
		}
	}
	return out
}

func routineSignature(class string, f *eiffel.FeatureBody) string {
	var b strings.Builder
	b.WriteString(class + "." + f.Name)
	if len(f.Params) > 0 {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Name + ": " + p.Type
		}
		b.WriteString("(" + strings.Join(params, "; ") + ")")
	}
	if f.ResultType != "" {
		b.WriteString(": " + f.ResultType)
	}
	return b.String()
}

func builtinSymbols() map[string]symbol {
	out := map[string]symbol{"print": {kind: protocol.CompletionItemKindFunction, detail: "builtin"}}
	for _, keyword := range replKeywords {
		if _, ok := out[keyword]; !ok {
			out[keyword] = symbol{kind: protocol.CompletionItemKindKeyword, detail: "keyword"}
		}
	}
	for _, basic := range []string{"INTEGER", "REAL", "STRING"} {
		out[basic] = symbol{kind: protocol.CompletionItemKindClass, detail: "basic type"}
	}
	return out
}

func completionItems(source string) []protocol.CompletionItem {
	symbols := builtinSymbols()
	for name, sym := range documentSymbols(source) {
		if _, ok := symbols[name]; !ok {
			symbols[name] = sym
		}
	}
	labels := make([]string, 0, len(symbols))
	for label := range symbols {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	items := make([]protocol.CompletionItem, 0, len(labels))
	for _, label := range labels {
		sym := symbols[label]
		items = append(items, protocol.CompletionItem{Label: label, Kind: &sym.kind, Detail: &sym.detail})
	}
	return items
}

func describeWord(source, word string) string {
	if sym, ok := builtinSymbols()[word]; ok {
		return sym.detail
	}
	if sym, ok := documentSymbols(source)[word]; ok {
		return sym.detail
	}
	return "symbol"
}

func boolPtr(b bool) *bool {
	return &b
}

// wordAtPosition finds the identifier under an LSP position; character counts UTF-16
// code units.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(lines[line])
	if len(runes) == 0 {
		return ""
	}

	cursor := 0
	for units := 0; cursor < len(runes) && units < character; cursor++ {
		units += len(utf16.Encode([]rune{runes[cursor]}))
	}
	if cursor == len(runes) {
		cursor--
	}
	if !isWordRune(runes[cursor]) {
		if cursor > 0 && isWordRune(runes[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	end := cursor
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}
	return string(runes[start:end])
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}

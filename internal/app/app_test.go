package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/ytreader/internal/dom/htmldom"
	"github.com/hyperifyio/ytreader/internal/summarize"
)

const watchPage = `<!doctype html><html><head><title>A Video</title></head>
<body style="background: white">
  <div id="masthead-container">masthead</div>
  <ytd-watch-flexy>
    <div id="primary">
      <div id="player" class="html5-video-player">video</div>
      <div id="description">This is the description of a video that is long enough to summarize.</div>
    </div>
    <div id="secondary"><div id="related">related videos</div></div>
  </ytd-watch-flexy>
</body></html>`

type stubClient struct {
	calls int
	reply string
	last  openai.ChatCompletionRequest
}

func (s *stubClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.reply},
	}}}, nil
}

func writePage(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "watch.html")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return p
}

func newApp(t *testing.T, cfg Config, client *stubClient, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	if cfg.CacheDir == "" {
		cfg.CacheDir = t.TempDir()
	}
	var out bytes.Buffer
	a, err := New(context.Background(), cfg, WithLLMClient(client), WithStdio(strings.NewReader(stdin), &out))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, &out
}

func TestRunPage_SummarizesDescriptionAndEnables(t *testing.T) {
	client := &stubClient{reply: "It is a video. It has a description."}
	out := filepath.Join(t.TempDir(), "reader.html")
	pdfPath := filepath.Join(t.TempDir(), "summary.pdf")
	a, _ := newApp(t, Config{Mode: ModePage, InputPath: writePage(t, watchPage), OutputPath: out, OutputPDFPath: pdfPath, LLMModel: "m"}, client, "")
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.calls != 1 || !strings.Contains(client.last.Messages[1].Content, "This is the description") {
		t.Fatalf("model not asked about the description: %+v", client.last)
	}

	doc := parseFile(t, out)
	box, _ := doc.ByID("yt-summary-box")
	if box == nil || box.Text() != "• It is a video.\n• It has a description." {
		t.Fatalf("summary box = %v", box)
	}
	related, _ := doc.ByID("related")
	if v, imp := related.Style("display"); v != "none" || !imp {
		t.Fatalf("related display = %q important=%v", v, imp)
	}
	player, _ := doc.ByID("player")
	if v, _ := player.Style("display"); v == "none" {
		t.Fatalf("player hidden")
	}
	if fi, err := os.Stat(pdfPath); err != nil || fi.Size() == 0 {
		t.Fatalf("pdf not written: %v", err)
	}
}

func TestRunPage_DisableRestoresPage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reader.html")
	a, _ := newApp(t, Config{Mode: ModePage, InputPath: writePage(t, watchPage), OutputPath: out, Summary: "• given", SummarySet: true, Disable: true}, &stubClient{}, "")
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	doc := parseFile(t, out)
	if c, _ := doc.ByID("yt-reader-elements-container"); c != nil {
		t.Fatalf("container left behind")
	}
	for _, id := range []string{"related", "secondary", "masthead-container"} {
		el, _ := doc.ByID(id)
		if _, ok := el.Attr("style"); ok {
			t.Fatalf("%s still styled after disable", id)
		}
		if _, ok := el.Attr("data-ytreader-id"); ok {
			t.Fatalf("%s still marked after disable", id)
		}
	}
}

func TestRunPage_DryRunSkipsModel(t *testing.T) {
	client := &stubClient{reply: "unused"}
	a, _ := newApp(t, Config{Mode: ModePage, InputPath: writePage(t, watchPage), OutputPath: "-", DryRun: true}, client, "")
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("model called on dry run")
	}
}

func TestRunPage_NoText(t *testing.T) {
	a, _ := newApp(t, Config{Mode: ModePage, InputPath: writePage(t, `<html><body><div id="primary"></div></body></html>`), OutputPath: "-", LLMModel: "m"}, &stubClient{}, "")
	if err := a.Run(context.Background()); !errors.Is(err, ErrNoInputText) {
		t.Fatalf("expected ErrNoInputText, got %v", err)
	}
}

func TestRunParagraph_FromStdin(t *testing.T) {
	client := &stubClient{reply: "- point"}
	a, out := newApp(t, Config{Mode: ModeParagraph, LLMModel: "m"}, client, strings.Repeat("word ", 20))
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "- point" {
		t.Fatalf("out = %q", out.String())
	}
}

func TestRunParagraph_TooShort(t *testing.T) {
	client := &stubClient{reply: "x"}
	a, _ := newApp(t, Config{Mode: ModeParagraph, LLMModel: "m", Text: "short"}, client, "")
	if err := a.Run(context.Background()); !errors.Is(err, summarize.ErrTextTooShort) {
		t.Fatalf("expected ErrTextTooShort, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("model called for short text")
	}
}

func TestServe_DrivesEngineOverFrames(t *testing.T) {
	doc, err := htmldom.ParseString(watchPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var in bytes.Buffer
	for _, m := range []map[string]any{
		{"type": "ENABLE_READER_MODE", "summary": "• hello"},
		{"type": "PING"},
	} {
		b, _ := json.Marshal(m)
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(b)))
		in.Write(hdr[:])
		in.Write(b)
	}
	a, out := newApp(t, Config{Mode: ModeHost, URL: "http://example.invalid"}, &stubClient{}, "")
	a.stdin = &in
	if err := a.serve(context.Background(), doc); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte(`{"status":"PONG"}`)) {
		t.Fatalf("no pong in %q", out.String())
	}
	// The stream ended with reader mode on; serve restores the page.
	if c, _ := doc.ByID("yt-reader-elements-container"); c != nil {
		t.Fatalf("container left after serve returned")
	}
}

func parseFile(t *testing.T, path string) *htmldom.Document {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc, err := htmldom.ParseString(string(b))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return doc
}

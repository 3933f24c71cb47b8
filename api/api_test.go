package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/store"
)

// fakeTransport returns canned provider responses.
type fakeTransport struct {
	completion  *llm.Completion
	streamBody  string
	lastRequest *llm.ChatRequest
}

func (f *fakeTransport) Complete(_ context.Context, req *llm.ChatRequest) (*llm.Completion, error) {
	f.lastRequest = req
	return f.completion, nil
}

func (f *fakeTransport) Stream(_ context.Context, req *llm.ChatRequest) (io.ReadCloser, error) {
	f.lastRequest = req
	return io.NopCloser(strings.NewReader(f.streamBody)), nil
}

var _ = Describe("Server", func() {
	var (
		server    *Server
		transport *fakeTransport
	)

	writePrompt := func(dir, name, data string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		writePrompt(dir, "greeting.toml", `
slug = "greeting"
version = "1.0.0"
content = "Hello {{ name }}!"

[[variables]]
name = "name"
type = "string"
required = true
`)
		writePrompt(dir, "signature.toml", `
slug = "signature"
version = "1.0.0"
content = "Regards, {{ sender }}"

[[variables]]
name = "sender"
type = "string"
required = true
`)

		st, err := store.Open(dir, nil)
		Expect(err).NotTo(HaveOccurred())

		transport = &fakeTransport{}
		logger, _ := zap.NewDevelopment()
		server = NewServer(Config{ListenAddr: ":0", Model: "default/model"}, st, engine.New(transport, nil), logger)
	})

	post := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, out)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("GET /v1/prompts", func() {
		It("lists stored prompts", func() {
			req, _ := http.NewRequest(http.MethodGet, "/v1/prompts", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result struct {
				Count   int            `json:"count"`
				Prompts []store.Prompt `json:"prompts"`
			}
			decode(resp, &result)
			Expect(result.Count).To(Equal(2))
		})
	})

	Describe("POST /v1/compile", func() {
		It("compiles an inline prompt", func() {
			resp := post("/v1/compile", CompileRequest{
				Content:   "Hi {{ who }}.",
				Variables: map[string]any{"who": "there"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var compiled prompt.Compiled
			decode(resp, &compiled)
			Expect(compiled.Content).To(Equal("Hi there."))
		})

		It("resolves includes from the registry", func() {
			resp := post("/v1/compile", CompileRequest{
				Content:   `{% include "signature" %}`,
				Variables: map[string]any{"sender": "Ada"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var compiled prompt.Compiled
			decode(resp, &compiled)
			Expect(compiled.Content).To(Equal("Regards, Ada"))
		})

		It("returns 422 with the missing variable names", func() {
			resp := post("/v1/compile", CompileRequest{
				Content: "Hi {{ who }}.",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))

			var errResp llm.ErrorResponse
			decode(resp, &errResp)
			Expect(errResp.Error).To(Equal("missing required variables"))
			Expect(errResp.Details).To(ConsistOf("who"))
		})

		It("returns 400 for template parse errors", func() {
			resp := post("/v1/compile", CompileRequest{
				Content: "Hi {{ who",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /v1/prompts/:slug/compile", func() {
		It("compiles a stored prompt", func() {
			resp := post("/v1/prompts/greeting/compile", PromptCompileRequest{
				Variables: map[string]any{"name": "Grace"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var compiled prompt.Compiled
			decode(resp, &compiled)
			Expect(compiled.Content).To(Equal("Hello Grace!"))
		})

		It("returns 404 for unknown slugs", func() {
			resp := post("/v1/prompts/ghost/compile", PromptCompileRequest{})
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /v1/execute", func() {
		It("executes buffered by default", func() {
			transport.completion = &llm.Completion{
				ID:     "gen-1",
				Object: llm.ObjectChatCompletion,
				Choices: []llm.Choice{{
					Message: llm.Message{Role: "assistant", Content: "Hi Grace."},
				}},
			}

			resp := post("/v1/execute", ExecuteRequest{
				Slug:      "greeting",
				Variables: map[string]any{"name": "Grace"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var completion llm.Completion
			decode(resp, &completion)
			Expect(completion.ID).To(Equal("gen-1"))
			Expect(completion.Text()).To(Equal("Hi Grace."))

			Expect(transport.lastRequest.Model).To(Equal("default/model"))
			Expect(transport.lastRequest.Stream).To(BeFalse())
			Expect(transport.lastRequest.Messages[0].Content).To(Equal("Hello Grace!"))
		})

		It("uses the requested model over the default", func() {
			transport.completion = &llm.Completion{}
			resp := post("/v1/execute", ExecuteRequest{
				Content: "plain",
				Model:   llm.ModelConfig{Model: "custom/model"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(transport.lastRequest.Model).To(Equal("custom/model"))
		})

		It("streams SSE when requested", func() {
			transport.streamBody = strings.Join([]string{
				`data: {"id":"gen-s","choices":[{"index":0,"delta":{"role":"assistant","content":"Hi"}}]}`,
				"",
				"data: [DONE]",
				"",
				"",
			}, "\n")

			streaming := true
			resp := post("/v1/execute", ExecuteRequest{
				Slug:      "greeting",
				Variables: map[string]any{"name": "Grace"},
				Stream:    &streaming,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"content":"Hi"`))
			Expect(string(body)).To(ContainSubstring("data: [DONE]"))

			Expect(transport.lastRequest.Stream).To(BeTrue())
		})

		It("returns 422 for validation failures before any provider call", func() {
			resp := post("/v1/execute", ExecuteRequest{Slug: "greeting"})
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
			Expect(transport.lastRequest).To(BeNil())
		})

		It("rejects inline chat prompts without messages", func() {
			resp := post("/v1/execute", ExecuteRequest{
				Type: prompt.KindChat,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(transport.lastRequest).To(BeNil())
		})
	})
})

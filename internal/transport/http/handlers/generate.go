package handlers

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/response"
)

// Прокси-эндпоинты генерации: тонкие обёртки над сторонними API без
// внутреннего состояния. Используют только личность из мидлвара.

type generateTextRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateText — POST /ai/generate-text.
func (h *Handlers) GenerateText(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		response.JSON(w, http.StatusInternalServerError, response.Envelope{
			Success: false,
			Message: "OpenAI API key is not configured",
		})
		return
	}

	var in generateTextRequest
	if err := decodeJSON(r, &in); err != nil || strings.TrimSpace(in.Prompt) == "" {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "prompt", Message: "Prompt is required and must be a non-empty string"},
		})
		return
	}

	content, err := h.ai.GenerateText(r.Context(), in.Prompt)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Text generated successfully", map[string]string{
		"content": content,
	})
}

type generateImageRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
}

// GenerateImage — POST /ai/generate-image.
// Соотношение сторон переводится в размер DALL·E, стиль дополняет prompt.
func (h *Handlers) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		response.JSON(w, http.StatusInternalServerError, response.Envelope{
			Success: false,
			Message: "OpenAI API key is not configured",
		})
		return
	}

	var in generateImageRequest
	if err := decodeJSON(r, &in); err != nil || strings.TrimSpace(in.Prompt) == "" {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "prompt", Message: "Prompt is required and must be a non-empty string"},
		})
		return
	}

	prompt := enhancePromptWithStyle(in.Prompt, in.Style)
	size := imageSize(in.AspectRatio)

	url, err := h.ai.GenerateImage(r.Context(), prompt, size)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Image generated successfully", map[string]string{
		"image":      url,
		"promptUsed": prompt,
		"size":       size,
		"style":      styleOrDefault(in.Style),
	})
}

var validVoices = map[string]bool{
	"alloy": true, "echo": true, "fable": true,
	"onyx": true, "nova": true, "shimmer": true,
}

type generateVoiceRequest struct {
	Text      string   `json:"text"`
	VoiceType string   `json:"voicetype"`
	Speed     *float64 `json:"speed"`
}

// GenerateVoice — POST /ai/generate-voice. Отвечает mp3-байтами (audio/mpeg).
func (h *Handlers) GenerateVoice(w http.ResponseWriter, r *http.Request) {
	if h.ai == nil {
		response.JSON(w, http.StatusInternalServerError, response.Envelope{
			Success: false,
			Message: "OpenAI API key is not configured",
		})
		return
	}

	var in generateVoiceRequest
	if err := decodeJSON(r, &in); err != nil || strings.TrimSpace(in.Text) == "" {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "text", Message: "Text is required"},
		})
		return
	}

	voice := in.VoiceType
	if voice == "" {
		voice = "alloy"
	}
	if !validVoices[voice] {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "voicetype", Message: "Invalid voice type. Valid options: alloy, echo, fable, onyx, nova, shimmer"},
		})
		return
	}

	speed := 1.0
	if in.Speed != nil {
		speed = *in.Speed
	}
	if speed < 0.25 || speed > 4.0 {
		response.ValidationFailed(w, []response.FieldError{
			{Field: "speed", Message: "Speed must be between 0.25 and 4.0"},
		})
		return
	}

	audio, err := h.ai.GenerateSpeech(r.Context(), in.Text, voice, speed)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// imageSize переводит пользовательское соотношение сторон в размер DALL·E.
func imageSize(aspectRatio string) string {
	switch strings.ToLower(aspectRatio) {
	case "square", "1:1":
		return "1024x1024"
	case "landscape", "16:9", "wide":
		return "1792x1024"
	case "portrait", "9:16", "tall":
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

// styleMap — предопределённые стили; неизвестный стиль подставляется как есть.
var styleMap = map[string]string{
	"realistic":    "photorealistic, high quality, detailed",
	"cartoon":      "cartoon style, animated, colorful",
	"anime":        "anime style, manga art, Japanese animation",
	"oil-painting": "oil painting style, artistic, classical art",
	"watercolor":   "watercolor painting, soft colors, artistic",
	"sketch":       "pencil sketch, hand-drawn, artistic sketch",
	"digital-art":  "digital art, modern, clean design",
	"vintage":      "vintage style, retro, classic",
	"minimalist":   "minimalist design, clean, simple",
}

func enhancePromptWithStyle(prompt, style string) string {
	if style == "" {
		return prompt
	}

	desc, ok := styleMap[strings.ToLower(style)]
	if !ok {
		desc = style
	}

	return prompt + ", " + desc
}

func styleOrDefault(style string) string {
	if style == "" {
		return "default"
	}

	return style
}

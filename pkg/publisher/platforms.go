package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// postJSON sends the body and decodes the platform response into a generic
// map. Platform APIs disagree on envelope shape, so callers pick the fields
// they need.
func postJSON(ctx context.Context, client *http.Client, url string, auth func(*http.Request), body interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		auth(req)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode >= 400 {
		return result, fmt.Errorf("platform returned status %d: %s", res.StatusCode, apiErrorMessage(result))
	}
	return result, nil
}

func apiErrorMessage(result map[string]interface{}) string {
	switch e := result["error"].(type) {
	case map[string]interface{}:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	case string:
		return e
	}
	if msg, ok := result["message"].(string); ok {
		return msg
	}
	return "unknown error"
}

func stringField(payload map[string]interface{}, key string) string {
	value, _ := payload[key].(string)
	return value
}

func failure(err error) models.PublishResult {
	return models.PublishResult{Success: false, Error: err.Error()}
}

// InstagramPublisher posts the caption and image through the Graph media
// endpoint.
type InstagramPublisher struct {
	client   *http.Client
	apiBase  string
	username string
	token    string
}

func NewInstagramPublisher(client *http.Client, apiBase, username, token string) *InstagramPublisher {
	return &InstagramPublisher{client: client, apiBase: apiBase, username: username, token: token}
}

func (p *InstagramPublisher) Publish(ctx context.Context, content models.ContentRecord, listing models.Listing) models.PublishResult {
	caption := stringField(content.Payload, "caption")
	imageURL := stringField(content.Payload, "image_url")
	if caption == "" {
		return failure(fmt.Errorf("instagram payload has no caption"))
	}

	url := fmt.Sprintf("%s/%s/media?access_token=%s", strings.TrimRight(p.apiBase, "/"), p.username, p.token)
	result, err := postJSON(ctx, p.client, url, nil, map[string]string{
		"image_url": imageURL,
		"caption":   caption,
	})
	if err != nil {
		return failure(err)
	}
	postID, ok := result["id"].(string)
	if !ok || postID == "" {
		return failure(fmt.Errorf("instagram media create failed: %s", apiErrorMessage(result)))
	}

	publishURL := fmt.Sprintf("%s/%s/media_publish?access_token=%s", strings.TrimRight(p.apiBase, "/"), p.username, p.token)
	published, err := postJSON(ctx, p.client, publishURL, nil, map[string]string{"creation_id": postID})
	if err != nil {
		return failure(err)
	}
	if finalID, ok := published["id"].(string); ok && finalID != "" {
		postID = finalID
	}

	return models.PublishResult{
		Success: true,
		PostID:  postID,
		URL:     fmt.Sprintf("https://instagram.com/p/%s", postID),
	}
}

// YouTubePublisher uploads video metadata through the upload endpoint.
type YouTubePublisher struct {
	client       *http.Client
	apiBase      string
	clientID     string
	clientSecret string
}

func NewYouTubePublisher(client *http.Client, apiBase, clientID, clientSecret string) *YouTubePublisher {
	return &YouTubePublisher{client: client, apiBase: apiBase, clientID: clientID, clientSecret: clientSecret}
}

func (p *YouTubePublisher) Publish(ctx context.Context, content models.ContentRecord, listing models.Listing) models.PublishResult {
	title := stringField(content.Payload, "title")
	if title == "" {
		return failure(fmt.Errorf("youtube payload has no title"))
	}

	url := fmt.Sprintf("%s/videos?part=snippet,status&key=%s", strings.TrimRight(p.apiBase, "/"), p.clientID)
	result, err := postJSON(ctx, p.client, url, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+p.clientSecret)
	}, map[string]interface{}{
		"snippet": map[string]interface{}{
			"title":       title,
			"description": stringField(content.Payload, "description"),
			"tags":        strings.Fields(stringField(content.Payload, "tags")),
		},
		"status": map[string]interface{}{"privacyStatus": "public"},
	})
	if err != nil {
		return failure(err)
	}
	videoID, ok := result["id"].(string)
	if !ok || videoID == "" {
		return failure(fmt.Errorf("youtube upload failed: %s", apiErrorMessage(result)))
	}

	return models.PublishResult{
		Success: true,
		PostID:  videoID,
		URL:     "https://youtube.com/watch?v=" + videoID,
	}
}

// WordPressPublisher creates a post through the wp-json REST API using basic
// auth with an application password.
type WordPressPublisher struct {
	client   *http.Client
	siteURL  string
	username string
	password string
}

func NewWordPressPublisher(client *http.Client, siteURL, username, password string) *WordPressPublisher {
	return &WordPressPublisher{client: client, siteURL: siteURL, username: username, password: password}
}

func (p *WordPressPublisher) Publish(ctx context.Context, content models.ContentRecord, listing models.Listing) models.PublishResult {
	title := stringField(content.Payload, "title")
	body := stringField(content.Payload, "content")
	if title == "" || body == "" {
		return failure(fmt.Errorf("blog payload is missing title or content"))
	}

	url := strings.TrimRight(p.siteURL, "/") + "/wp-json/wp/v2/posts"
	result, err := postJSON(ctx, p.client, url, func(req *http.Request) {
		req.SetBasicAuth(p.username, p.password)
	}, map[string]interface{}{
		"title":   title,
		"content": body,
		"excerpt": stringField(content.Payload, "excerpt"),
		"status":  "publish",
	})
	if err != nil {
		return failure(err)
	}

	postID, ok := result["id"].(float64)
	if !ok {
		return failure(fmt.Errorf("wordpress create failed: %s", apiErrorMessage(result)))
	}
	link := stringField(result, "link")
	if link == "" {
		link = fmt.Sprintf("%s/?p=%d", strings.TrimRight(p.siteURL, "/"), int64(postID))
	}

	return models.PublishResult{
		Success: true,
		PostID:  fmt.Sprintf("%d", int64(postID)),
		URL:     link,
	}
}

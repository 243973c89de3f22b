// internal/vector/client.go
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"parentic-api/pkg/models"
)

const (
	childrenCollection = "children_data"
	chatCollection     = "chat_history"
)

// Client maintains a searchable text mirror of child profiles and chat
// messages in a Chroma server. The relational store stays the source of
// truth: every operation here is best-effort and swallows backend errors —
// index maintenance must never fail the request that triggered it.
type Client struct {
	baseURL string
	http    *http.Client

	// Collection IDs are resolved lazily and retried while the backend is
	// unreachable; operations run from background goroutines as well as the
	// request path, so access goes through collections().
	mu         sync.Mutex
	childrenID string
	chatID     string
}

// SearchResult is one similarity hit: the original document, its metadata
// and the store's distance score (smaller is closer).
type SearchResult struct {
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata"`
	Distance float64        `json:"distance"`
}

func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	c.collections(context.Background())
	return c
}

// collections returns the resolved collection IDs, creating them on first use.
// An ID stays "" while the backend is unreachable and is retried on the next
// call.
func (c *Client) collections(ctx context.Context) (childrenID, chatID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.childrenID == "" {
		id, err := c.getOrCreateCollection(ctx, childrenCollection, "Child profiles and information")
		if err != nil {
			log.Printf("⚠️ [VECTOR] Could not initialize collection %q: %v", childrenCollection, err)
		} else {
			c.childrenID = id
		}
	}
	if c.chatID == "" {
		id, err := c.getOrCreateCollection(ctx, chatCollection, "User chat messages and AI responses")
		if err != nil {
			log.Printf("⚠️ [VECTOR] Could not initialize collection %q: %v", chatCollection, err)
		} else {
			c.chatID = id
		}
	}
	return c.childrenID, c.chatID
}

func (c *Client) getOrCreateCollection(ctx context.Context, name, description string) (string, error) {
	payload := map[string]any{
		"name":          name,
		"metadata":      map[string]string{"description": description},
		"get_or_create": true,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/v1/collections", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpsertChild mirrors a child profile into the index. Update semantics are
// delete-then-reinsert keyed by "child_<id>".
func (c *Client) UpsertChild(ctx context.Context, child *models.Child) {
	childrenID, _ := c.collections(ctx)
	if childrenID == "" {
		return
	}

	docID := fmt.Sprintf("child_%d", child.ID)

	// Drop any stale entry first; it may not exist, which is fine.
	_ = c.post(ctx, "/api/v1/collections/"+childrenID+"/delete", map[string]any{
		"ids": []string{docID},
	}, nil)

	grade := ""
	if child.SchoolGrade != nil {
		grade = *child.SchoolGrade
	}
	metadata := map[string]any{
		"child_id":     child.ID,
		"parent_id":    child.ParentID,
		"name":         child.Name,
		"age":          child.Age,
		"gender":       child.Gender,
		"school_grade": grade,
		"created_at":   child.CreatedAt.UTC().Format(time.RFC3339),
		"type":         "child_profile",
	}

	err := c.post(ctx, "/api/v1/collections/"+childrenID+"/add", map[string]any{
		"ids":       []string{docID},
		"documents": []string{buildChildText(child)},
		"metadatas": []map[string]any{metadata},
	}, nil)
	if err != nil {
		log.Printf("⚠️ [VECTOR] Error storing child data: %v", err)
		return
	}
	log.Printf("📌 [VECTOR] Stored child data for %s (ID: %d)", child.Name, child.ID)
}

// buildChildText serializes a child into the canonical indexed text block.
func buildChildText(child *models.Child) string {
	parts := []string{
		"Child Name: " + child.Name,
		fmt.Sprintf("Age: %d years old", child.Age),
		"Gender: " + child.Gender,
	}
	if child.SchoolGrade != nil && *child.SchoolGrade != "" {
		parts = append(parts, "School Grade: "+*child.SchoolGrade)
	}
	if len(child.Hobbies) > 0 {
		parts = append(parts, "Hobbies: "+strings.Join(child.Hobbies, ", "))
	}
	if len(child.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(child.Interests, ", "))
	}
	if len(child.PersonalityTraits) > 0 {
		parts = append(parts, "Personality Traits: "+strings.Join(child.PersonalityTraits, ", "))
	}
	if len(child.FavoriteActivities) > 0 {
		parts = append(parts, "Favorite Activities: "+strings.Join(child.FavoriteActivities, ", "))
	}
	if child.SpecialNeeds != nil && *child.SpecialNeeds != "" {
		parts = append(parts, "Special Needs: "+*child.SpecialNeeds)
	}
	if child.Challenges != nil && *child.Challenges != "" {
		parts = append(parts, "Current Challenges: "+*child.Challenges)
	}
	if child.Achievements != nil && *child.Achievements != "" {
		parts = append(parts, "Recent Achievements: "+*child.Achievements)
	}
	return strings.Join(parts, "\n")
}

// StoreMessage indexes one chat turn. Context metadata is attached only when
// a structured snapshot was stored with the message.
func (c *Client) StoreMessage(ctx context.Context, message *models.ChatMessage) {
	_, chatID := c.collections(ctx)
	if chatID == "" {
		return
	}

	msgType := "user_message"
	if message.IsAIResponse {
		msgType = "ai_response"
	}
	metadata := map[string]any{
		"message_id":     message.ID,
		"user_id":        message.UserID,
		"is_ai_response": message.IsAIResponse,
		"created_at":     message.CreatedAt.UTC().Format(time.RFC3339),
		"type":           msgType,
	}
	if len(message.ContextData) > 0 {
		var snapshot map[string]any
		if err := json.Unmarshal(message.ContextData, &snapshot); err == nil && len(snapshot) > 0 {
			keys := make([]string, 0, len(snapshot))
			for k := range snapshot {
				keys = append(keys, k)
			}
			metadata["has_context"] = true
			// Chroma metadata values are scalars, so the keys are joined.
			metadata["context_keys"] = strings.Join(keys, ",")
		}
	}

	err := c.post(ctx, "/api/v1/collections/"+chatID+"/add", map[string]any{
		"ids":       []string{fmt.Sprintf("message_%d", message.ID)},
		"documents": []string{message.Content},
		"metadatas": []map[string]any{metadata},
	}, nil)
	if err != nil {
		log.Printf("⚠️ [VECTOR] Error storing chat message: %v", err)
	}
}

// SearchChildren runs a similarity query over the caller's own child
// profiles. Returns an empty slice on any backend failure.
func (c *Client) SearchChildren(ctx context.Context, query string, parentID uint, limit int) []SearchResult {
	childrenID, _ := c.collections(ctx)
	if childrenID == "" {
		return nil
	}
	return c.query(ctx, childrenID, query, map[string]any{"parent_id": parentID}, limit)
}

// SearchChat runs a similarity query over the caller's own chat history.
func (c *Client) SearchChat(ctx context.Context, query string, userID uint, limit int) []SearchResult {
	_, chatID := c.collections(ctx)
	if chatID == "" {
		return nil
	}
	return c.query(ctx, chatID, query, map[string]any{"user_id": userID}, limit)
}

func (c *Client) query(ctx context.Context, collectionID, query string, where map[string]any, limit int) []SearchResult {
	payload := map[string]any{
		"query_texts": []string{query},
		"n_results":   limit,
		"where":       where,
		"include":     []string{"documents", "metadatas", "distances"},
	}
	var out struct {
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := c.post(ctx, "/api/v1/collections/"+collectionID+"/query", payload, &out); err != nil {
		log.Printf("⚠️ [VECTOR] Search failed: %v", err)
		return nil
	}
	if len(out.Documents) == 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(out.Documents[0]))
	for i, doc := range out.Documents[0] {
		r := SearchResult{Document: doc}
		if len(out.Metadatas) > 0 && i < len(out.Metadatas[0]) {
			r.Metadata = out.Metadatas[0][i]
		}
		if len(out.Distances) > 0 && i < len(out.Distances[0]) {
			r.Distance = out.Distances[0][i]
		}
		results = append(results, r)
	}
	return results
}

// DeleteChild removes a child's index entry.
func (c *Client) DeleteChild(ctx context.Context, childID uint) {
	childrenID, _ := c.collections(ctx)
	if childrenID == "" {
		return
	}
	err := c.post(ctx, "/api/v1/collections/"+childrenID+"/delete", map[string]any{
		"ids": []string{fmt.Sprintf("child_%d", childID)},
	}, nil)
	if err != nil {
		log.Printf("⚠️ [VECTOR] Error deleting child data: %v", err)
	}
}

// DeleteUserHistory removes every chat entry belonging to a user. Resolves
// the ids first, then deletes; best-effort with no partial-failure rollback.
func (c *Client) DeleteUserHistory(ctx context.Context, userID uint) {
	_, chatID := c.collections(ctx)
	if chatID == "" {
		return
	}

	var out struct {
		IDs []string `json:"ids"`
	}
	err := c.post(ctx, "/api/v1/collections/"+chatID+"/get", map[string]any{
		"where": map[string]any{"user_id": userID},
	}, &out)
	if err != nil {
		log.Printf("⚠️ [VECTOR] Error resolving chat history for user %d: %v", userID, err)
		return
	}
	if len(out.IDs) == 0 {
		return
	}

	err = c.post(ctx, "/api/v1/collections/"+chatID+"/delete", map[string]any{
		"ids": out.IDs,
	}, nil)
	if err != nil {
		log.Printf("⚠️ [VECTOR] Error deleting chat history for user %d: %v", userID, err)
	}
}

// TestConnection is a boolean liveness probe.
func (c *Client) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(b))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

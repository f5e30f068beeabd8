package shopify

import (
	"fmt"
	"strings"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// UserError is Shopify's field-level validation error shape, shared
// by every mutation payload.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

func joinUserErrors(errs []UserError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(e.Field, "."), e.Message))
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

type productNode struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Handle    string   `json:"handle"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

type productCreatePayload struct {
	ProductCreate struct {
		Product    *productNode `json:"product"`
		UserErrors []UserError  `json:"userErrors"`
	} `json:"productCreate"`
}

// StagedTarget is the single-use upload destination Shopify issues
// per file. Parameters must be sent as form fields ahead of the file
// bytes.
type StagedTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}

type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type stagedUploadsCreatePayload struct {
	StagedUploadsCreate struct {
		StagedTargets []StagedTarget `json:"stagedTargets"`
		UserErrors    []UserError    `json:"userErrors"`
	} `json:"stagedUploadsCreate"`
}

type mediaNode struct {
	ID               string `json:"id"`
	Alt              string `json:"alt"`
	MediaContentType string `json:"mediaContentType"`
	Status           string `json:"status"`
	Image            *struct {
		URL     string `json:"url"`
		AltText string `json:"altText"`
	} `json:"image"`
}

type productCreateMediaPayload struct {
	ProductCreateMedia struct {
		Media           []mediaNode `json:"media"`
		MediaUserErrors []UserError `json:"mediaUserErrors"`
	} `json:"productCreateMedia"`
}

type publicationsPayload struct {
	Publications struct {
		Edges []struct {
			Node struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"publications"`
}

type seoNode struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
	SEO    struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"seo"`
}

type productUpdatePayload struct {
	ProductUpdate struct {
		Product    *seoNode    `json:"product"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"productUpdate"`
}

type collectionUpdatePayload struct {
	CollectionUpdate struct {
		Collection *seoNode    `json:"collection"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"collectionUpdate"`
}

type byHandlePayload struct {
	ProductByHandle    *handleNode `json:"productByHandle"`
	CollectionByHandle *handleNode `json:"collectionByHandle"`
}

type handleNode struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

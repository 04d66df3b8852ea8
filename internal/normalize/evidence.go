// internal/normalize/evidence.go
package normalize

import (
	"fmt"
	"strings"

	"loan-review-console/internal/models"
)

// Field-priority tables for evidence reconciliation. Backend versions have
// shipped the same data under different names; the first match wins.
var (
	evidenceListKeys     = []string{"evidence", "evidence_items", "verification_evidence", "attachments"}
	evidenceIDFields     = []string{"id", "evidence_id"}
	evidenceLabelFields  = []string{"file_name", "name", "label"}
	evidenceMimeFields   = []string{"file_type", "mime_type", "content_type"}
	evidenceContentField = []string{"base64", "data_url", "content", "file_base64", "data"}
)

const defaultEvidenceMime = "image/jpeg"

// NormalizeEvidence reconciles an arbitrary evidence payload shape into a
// canonical, order-preserving item list. Items without usable content are
// dropped and logged, never surfaced as errors.
func (n *Normalizer) NormalizeEvidence(raw map[string]interface{}) []models.EvidenceItem {
	rawItems, ok := arrayField(raw, evidenceListKeys...)
	if !ok {
		if nested, found := asMap(raw["application"]); found {
			rawItems, ok = arrayField(nested, evidenceListKeys...)
		}
	}
	if !ok {
		return []models.EvidenceItem{}
	}

	items := make([]models.EvidenceItem, 0, len(rawItems))
	for index, rawItem := range rawItems {
		entry, ok := asMap(rawItem)
		if !ok {
			n.logger.Debug("Dropping malformed evidence entry", map[string]interface{}{
				"index": index,
			})
			continue
		}

		syntheticKey := fmt.Sprintf("evidence-%d", index)

		mimeType, ok := stringField(entry, evidenceMimeFields...)
		if !ok {
			mimeType = defaultEvidenceMime
		}

		content, ok := stringField(entry, evidenceContentField...)
		if !ok {
			n.logger.Debug("Dropping evidence entry without usable content", map[string]interface{}{
				"index": index,
			})
			continue
		}

		contentRef := content
		if !strings.HasPrefix(content, "data:") {
			contentRef = fmt.Sprintf("data:%s;base64,%s", mimeType, content)
		}

		id, ok := stringField(entry, evidenceIDFields...)
		if !ok {
			id = syntheticKey
		}
		label, ok := stringField(entry, evidenceLabelFields...)
		if !ok {
			label = syntheticKey
		}

		items = append(items, models.EvidenceItem{
			ID:         id,
			Label:      label,
			MimeType:   mimeType,
			ContentRef: contentRef,
		})
	}

	return items
}

package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal        atomic.Uint64
	uploadFailuresTotal atomic.Uint64
	linkFailuresTotal   atomic.Uint64
	likesTotal          atomic.Uint64
	unlikesTotal        atomic.Uint64
	webhookEventsTotal  atomic.Uint64
	webhookRejected     atomic.Uint64
	reconcileLinked     atomic.Uint64
	reconcileUnlinked   atomic.Uint64
	reconcileOrphaned   atomic.Uint64

	httpRequests = newCounterVec()

	uploadDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncUpload counts a wallpaper that was stored and recorded.
func IncUpload() { uploadsTotal.Add(1) }

// IncUploadFailure counts an upload that failed before the record was written.
func IncUploadFailure() { uploadFailuresTotal.Add(1) }

// IncLinkFailure counts a wallpaper that could not be appended to its poster's list.
func IncLinkFailure() { linkFailuresTotal.Add(1) }

// IncLike counts a like or unlike request that reached the store.
func IncLike(like bool) {
	if like {
		likesTotal.Add(1)
		return
	}
	unlikesTotal.Add(1)
}

// IncWebhookEvent counts a verified identity-provider event.
func IncWebhookEvent() { webhookEventsTotal.Add(1) }

// IncWebhookRejected counts a webhook delivery that failed verification.
func IncWebhookRejected() { webhookRejected.Add(1) }

// AddReconcile accumulates the outcome of one reconciliation sweep.
func AddReconcile(linked, unlinked, orphaned int) {
	reconcileLinked.Add(uint64(max(0, linked)))
	reconcileUnlinked.Add(uint64(max(0, unlinked)))
	reconcileOrphaned.Add(uint64(max(0, orphaned)))
}

// IncHTTPRequest counts a completed request by status class.
func IncHTTPRequest(status int) {
	httpRequests.Inc(fmt.Sprintf("%dxx", status/100))
}

// ObserveUploadDurationMs records how long an upload took end to end.
func ObserveUploadDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	uploadDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "wallpaper_uploads_total", "Wallpapers stored and recorded", uploadsTotal.Load())
	writeCounter(&buf, "wallpaper_upload_failures_total", "Uploads that failed before a record was written", uploadFailuresTotal.Load())
	writeCounter(&buf, "wallpaper_link_failures_total", "Wallpapers not appended to the poster's list", linkFailuresTotal.Load())
	writeCounter(&buf, "wallpaper_likes_total", "Like requests", likesTotal.Load())
	writeCounter(&buf, "wallpaper_unlikes_total", "Unlike requests", unlikesTotal.Load())
	writeCounter(&buf, "webhook_events_total", "Verified identity webhook events", webhookEventsTotal.Load())
	writeCounter(&buf, "webhook_rejected_total", "Identity webhook deliveries that failed verification", webhookRejected.Load())
	writeCounter(&buf, "reconcile_linked_total", "Wallpaper ids appended by reconciliation", reconcileLinked.Load())
	writeCounter(&buf, "reconcile_unlinked_total", "Stale wallpaper ids removed by reconciliation", reconcileUnlinked.Load())
	writeCounter(&buf, "reconcile_orphaned_total", "Wallpapers whose poster has no user record", reconcileOrphaned.Load())
	writeCounterVec(&buf, "http_requests_total", "Completed HTTP requests", "code", httpRequests.Snapshot())
	writeHistogram(&buf, "wallpaper_upload_duration_ms", "Upload duration in milliseconds", uploadDuration.Snapshot())
	return buf.String()
}

type counterVec struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[string]uint64)}
}

func (v *counterVec) Inc(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[label]++
}

func (v *counterVec) Snapshot() map[string]uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	for k, n := range v.values {
		out[k] = n
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

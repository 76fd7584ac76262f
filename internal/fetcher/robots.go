package fetcher

import (
	"context"
	"net/http"

	"github.com/temoto/robotstxt"
)

// isAllowed fetches and caches robots.txt for urlStr's origin, reporting
// whether the path is allowed for f's User-Agent. An unreachable or
// absent robots.txt is treated as allow-all, matching the teacher's
// Fetcher.IsAllowed.
func (f *Fetcher) isAllowed(ctx context.Context, urlStr string) bool {
	u, err := parseURL(urlStr)
	if err != nil {
		return false
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	f.robotsMu.RLock()
	robots, cached := f.robotsCache[robotsURL]
	f.robotsMu.RUnlock()

	if !cached {
		robots = f.fetchRobots(ctx, robotsURL)
		f.robotsMu.Lock()
		f.robotsCache[robotsURL] = robots
		f.robotsMu.Unlock()
	}

	if robots == nil {
		return true
	}

	group := robots.FindGroup(f.userAgent)
	return group.Test(u.Path)
}

func (f *Fetcher) fetchRobots(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return robots
}

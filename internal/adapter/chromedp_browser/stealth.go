package chromedp_browser

import (
	"context"
	"fmt"
	"slices"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const acceptLanguage = "es-ES,es;q=0.9,en;q=0.8"

var stealthHeaders = network.Headers{
	"Accept-Language":           acceptLanguage,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Cache-Control":             "max-age=0",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Scripts run before any page script on every new document.
var stealthScripts = []string{
	`Object.defineProperty(navigator, 'webdriver', { get: () => false });`,
	`Object.defineProperty(navigator, 'languages', { get: () => ['es-ES', 'es', 'en-US', 'en'] });`,
	`Object.defineProperty(navigator, 'plugins', {
		get: () => [
			{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
			{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
			{ name: 'Chromium PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
		],
	});`,
	`window.chrome = window.chrome || { runtime: {}, loadTimes: function() {}, csi: function() {}, app: {} };`,
	`(() => {
		const original = window.navigator.permissions && window.navigator.permissions.query;
		if (!original) return;
		window.navigator.permissions.query = (parameters) =>
			parameters.name === 'notifications'
				? Promise.resolve({ state: Notification.permission })
				: original.call(window.navigator.permissions, parameters);
	})();`,
	`(() => {
		if (typeof WebGLRenderingContext === 'undefined') return;
		const getParameter = WebGLRenderingContext.prototype.getParameter;
		WebGLRenderingContext.prototype.getParameter = function(parameter) {
			if (parameter === 37445) return 'Intel Inc.';
			if (parameter === 37446) return 'Intel Iris OpenGL Engine';
			return getParameter.call(this, parameter);
		};
	})();`,
}

func platformScript(platform string) string {
	return fmt.Sprintf("Object.defineProperty(navigator, 'platform', { get: () => %q });", platform)
}

// stealthTasks prepares a fresh tab so it looks like an ordinary desktop
// browser. It must run before the first navigation.
func stealthTasks(profile Profile, width, height int) chromedp.Tasks {
	return chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(stealthHeaders),
		emulation.SetUserAgentOverride(profile.UserAgent).
			WithAcceptLanguage(acceptLanguage).
			WithPlatform(profile.Platform()),
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		emulation.SetAutomationOverride(false),
		page.SetBypassCSP(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			scripts := append(slices.Clone(stealthScripts), platformScript(profile.Platform()))
			for _, script := range scripts {
				if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

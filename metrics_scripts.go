package main

// script to collect navigation timing and resource transfer sizes
// - returns null when the page exposes no navigation timing
const perfScript = `(() => {
	if (!window.performance || !performance.timing) {
		return null;
	}

	const timing = performance.timing;
	const resources = performance.getEntriesByType('resource');

	return {
		navigationStart: timing.navigationStart,
		requestStart: timing.requestStart,
		responseEnd: timing.responseEnd,
		domContentLoadedEventEnd: timing.domContentLoadedEventEnd,
		loadEventEnd: timing.loadEventEnd,
		transferSizes: resources.map(entry => entry.transferSize || 0),
	};
})();`

// Package pipeline prepares the fragments a document template embeds:
// Markdown notes rendered to HTML, QR codes as data URIs and stylesheets
// made safe for a <style> element.
//
// Page layout and rasterization are handled by the root dealerdocs package
// through headless Chrome; this package never touches a browser.
package pipeline

package epubtext

import "github.com/PuerkitoBio/goquery"

// navigationIDSelector lists the elements reading systems hang in-page
// navigation ids on.
const navigationIDSelector = "h1[id], h2[id], h3[id], h4[id], h5[id], h6[id], body[id]"

// sanitize removes navigation ids from headings and the body so that the
// footnote resolver cannot mistake a navigation target for a note.
func sanitize(tree *goquery.Document) {
	tree.Find(navigationIDSelector).RemoveAttr("id")
}

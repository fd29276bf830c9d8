package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Folder and file tools
	OpenFolderDescription = `Open a folder of invoice PDFs and list the files in it.

**When to use:** Starting a session, or switching to another batch of invoices.

**Why it's useful:** Lists every PDF directly inside the folder (case-insensitive .pdf) and remembers the folder so the next start reopens it.

**Examples:**
• Start a batch: "Open /home/me/invoices/2025-06"
• Switch batches: "Open the folder with last month's receipts"

**Common workflows:**
1. Batch renaming: invoice_open_folder → invoice_open_file → select regions → invoice_rename
2. Safety first: invoice_open_folder → invoice_backup → start renaming

**Best practices:** Use an absolute path. Renamed files go to renamed/ and originals to original/ inside this folder.`

	ListFilesDescription = `List the PDFs of the current folder again.

**When to use:** After files were added or renamed outside the session.

**Best practices:** invoice_rename already refreshes the list; call this only when the folder changed on disk.`

	OpenFileDescription = `Open one PDF of the current folder and show its first page.

**When to use:** Before reading, selecting or renaming an invoice.

**Why it's useful:** Resets page and zoom, loads the page text and offers candidate items (dates, invoice numbers, amounts, company names) for the filename.

**Examples:**
• "Open scan_0012.pdf"
• "Open the next file in the list"

**Best practices:** Pass a name from invoice_open_folder. Paths outside the folder are rejected.`

	// Viewing tools
	NavigateDescription = `Change the page or the zoom of the open PDF.

**When to use:** Multi-page invoices, or before selecting small print.

**Why it's useful:** Selections are made in preview pixels at the current zoom; the zoom is undone when the selection is mapped onto the page.

**Examples:**
• Next page: action "next"
• Zoom in one step (25%): action "zoom_in"
• Back to 100%: action "zoom_reset"

**Best practices:** Zoom ranges from 25% to 500%. Pass viewport_width/height to get the displayed preview size back.`

	PreviewDescription = `Render the current page as a PNG image.

**When to use:** To look at the invoice before choosing a region to select.

**Why it's useful:** Returns the page at 2x scale; recent pages are cached so paging back and forth is cheap.

**Best practices:** Use the returned width and height (scaled by the zoom) as preview_width/preview_height when selecting.`

	PageTextDescription = `Get the text layer of the current page and the items extracted from it.

**When to use:** Born-digital invoices where the text is selectable.

**Why it's useful:** Items are ready to be appended to the filename: ISO dates, invoice numbers, total lines and company names.

**Best practices:** Scanned pages have no text layer; use invoice_select_region instead.`

	// Selection tools
	SelectRegionDescription = `Extract the text inside a rectangle selected on the page preview.

**When to use:** Picking the date, invoice number or vendor name from a specific spot of the invoice.

**Why it's useful:** Uses the PDF text layer when present. Otherwise the region is rendered and read with OCR, and embedded images under the selection are tried too. Extracted lines are added to the item list.

**Examples:**
• Vendor name in the header: x=40 y=30 width=300 height=60 on an 800x600 preview
• Full analysis with statistics: debug=true

**Common workflows:**
1. Scanned invoice: invoice_preview → invoice_select_region → invoice_add_item → invoice_rename
2. Hard to read region: invoice_select_region → invoice_ocr_region

**Best practices:** Selections must be larger than 10x10 pixels. Coordinates are preview pixels at the current zoom.`

	OCRRegionDescription = `Run the thorough OCR search on a selected region.

**When to use:** invoice_select_region returned nothing useful or garbled text.

**Why it's useful:** Tries several Tesseract page segmentation modes against the original, grayscale, high contrast and (for small regions) upscaled versions of the region and keeps the best scoring text.

**Best practices:** Slower than invoice_select_region. Language "auto" picks between Japanese and English.`

	// Filename tools
	AddItemDescription = `Append an item to the new filename.

**When to use:** After choosing a date, number or name from the item list or a selection.

**Why it's useful:** Items are joined with "_". With format_date, Japanese era and slash dates become YYYY-MM-DD (令和7年6月16日 → 2025-06-16).

**Best practices:** Build the name in order, for example date, vendor, account.`

	AddAccountDescription = `Append an account title (勘定科目) to the new filename.

**When to use:** Classifying the invoice for bookkeeping.

**Why it's useful:** Titles come from accounts.csv, sorted by reading; call invoice_list_accounts to see them.`

	ListAccountsDescription = `List the account titles available for filenames.`

	SetFilenameDescription = `Replace the new filename, or reset it to the current file name.

**When to use:** Correcting the built name by hand, or starting over.

**Best practices:** Pass reset=true to put the current file name back.`

	RenameDescription = `Rename the open PDF to the built filename.

**When to use:** The filename is complete.

**Why it's useful:** A copy named after the filename goes into renamed/ and the original moves into original/ (with a timestamp suffix if a file of that name is already there). Characters not allowed in filenames are replaced with fullwidth equivalents.

**Best practices:** Fails if renamed/ already contains the name or the name is unchanged. The document is closed afterwards; open the next file.`

	BackupDescription = `Copy every PDF of the current folder into work/.

**When to use:** Before renaming a batch.

**Best practices:** Existing copies in work/ are overwritten. Failures for single files are reported, not fatal.`

	// Utility tools
	StateDescription = `Get the current session state: folder, files, open file, page, zoom, filename and items.`

	ServerInfoDescription = `Get server status, configuration and preview cache statistics.

**When to use:** Starting a session or troubleshooting rendering and OCR.

**Best practices:** Shows the PDF renderer (mupdf or pdftoppm), OCR language and the invoice folder.`
)

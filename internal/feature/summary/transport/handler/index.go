package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Upload PDF Form</title>
</head>
<body>
    <h2>Upload PDF File</h2>
    <form action="/upload-pdf" method="post" enctype="multipart/form-data">
        <label for="textInput">Enter the Company Name</label>
        <input type="text" id="textInput" name="textInput" required>
        <label for="file">Select PDF file to upload:</label>
        <input type="file" id="file" name="file" accept=".pdf" required>
        <br><br>
        <button type="submit">Submit</button>
    </form>
</body>
</html>
`

// Index はPDFアップロード用のHTMLフォームを返します。
//
// エンドポイント: GET /
func (h *SummaryHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

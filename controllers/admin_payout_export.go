package controllers

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/services"
	"github.com/rstferramentas/affiliatehub/utils"
)

// Admin: Download pending payouts as Excel
func DownloadPayoutReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadPayoutReportExcel called")

	payouts, err := services.GetPendingPayouts(config.DB)
	if err != nil {
		utils.LogError("Failed to fetch payouts for Excel report: %v", err)
		utils.InternalServerError(c, "Failed to fetch payouts", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d pending payouts for Excel report", len(payouts))

	var totalEarned float64
	for _, payout := range payouts {
		totalEarned += payout.CommissionEarned
	}
	totalEarned = math.Round(totalEarned*100) / 100

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Pending Payouts")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("AFFILIATEHUB - Pending Payouts")
	dateRow := sheet.AddRow()
	dateRow.AddCell().SetString("Generated: " + time.Now().Format("2006-01-02 15:04"))
	sheet.AddRow() // spacing

	headers := []string{"Commission ID", "Influencer", "Order ID", "Order Date", "Order Total", "Commission", "First Purchase"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, payout := range payouts {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(payout.ID))
		row.AddCell().SetString(payout.Influencer.Name)
		row.AddCell().SetInt(int(payout.PrestashopOrderID))
		row.AddCell().SetString(payout.OrderCreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetFloat(payout.OrderTotalWithVat)
		row.AddCell().SetFloat(payout.CommissionEarned)
		if payout.IsFirstPurchase {
			row.AddCell().SetString("yes")
		} else {
			row.AddCell().SetString("no")
		}
	}

	sheet.AddRow() // spacing
	totalRow := sheet.AddRow()
	totalRow.AddCell().SetString("Total pending")
	totalRow.AddCell().SetString(fmt.Sprintf("%.2f", totalEarned))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pending_payouts_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated payout Excel report with %d rows", len(payouts))
}

// Admin: Download pending payouts as PDF
func DownloadPayoutReportPDF(c *gin.Context) {
	utils.LogInfo("DownloadPayoutReportPDF called")

	payouts, err := services.GetPendingPayouts(config.DB)
	if err != nil {
		utils.LogError("Failed to fetch payouts for PDF report: %v", err)
		utils.InternalServerError(c, "Failed to fetch payouts", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d pending payouts for PDF report", len(payouts))

	var totalEarned float64
	for _, payout := range payouts {
		totalEarned += payout.CommissionEarned
	}
	totalEarned = math.Round(totalEarned*100) / 100

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "AFFILIATEHUB - Pending Payouts")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Generated: "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(12)

	headers := []string{"ID", "Influencer", "Order", "Order Date", "Order Total", "Commission", "First"}
	widths := []float64{18, 70, 22, 40, 32, 32, 18}

	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, payout := range payouts {
		first := "no"
		if payout.IsFirstPurchase {
			first = "yes"
		}
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", payout.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, payout.Influencer.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", payout.PrestashopOrderID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 7, payout.OrderCreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", payout.OrderTotalWithVat), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, fmt.Sprintf("%.2f", payout.CommissionEarned), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 7, first, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total pending: %.2f", totalEarned))

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pending_payouts_%s.pdf", time.Now().Format("2006-01-02")))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated payout PDF report with %d rows", len(payouts))
}

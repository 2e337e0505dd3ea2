// internal/pkg/pdf/template.go
package pdf

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Tax Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { overflow: hidden; border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
        .company { float: left; width: 55%; }
        .meta { float: right; width: 40%; text-align: right; }
        .title { font-size: 26px; font-weight: bold; color: #1d4ed8; margin-bottom: 8px; }
        .section-title { font-size: 15px; font-weight: bold; margin: 18px 0 6px; color: #374151; }
        .items { width: 100%; border-collapse: collapse; margin-top: 12px; }
        .items th, .items td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .num { text-align: right !important; }
        .totals { float: right; width: 320px; margin-top: 16px; border-collapse: collapse; }
        .totals td { padding: 6px 8px; border-bottom: 1px solid #eee; }
        .grand { font-size: 17px; font-weight: bold; border-top: 2px solid #333; }
        .footer { clear: both; margin-top: 48px; padding-top: 16px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company">
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>Phone: {{.Company.Phone}}</p>{{end}}
            {{if .Company.Email}}<p>Email: {{.Company.Email}}</p>{{end}}
            {{if .Company.GSTIN}}<p>GSTIN: {{.Company.GSTIN}}</p>{{end}}
        </div>
        <div class="meta">
            <div class="title">TAX INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Order Date:</strong> {{date .Order.CreatedAt}}</p>
            <p><strong>Status:</strong> {{.Order.Status}}</p>
        </div>
    </div>

    <div class="section-title">Deliver To</div>
    <p>{{.Order.DeliveryAddress}}</p>
    <p>{{.Order.DeliveryOption}}{{with .Order.ScheduledDate}}, scheduled {{date .}}{{end}}</p>
    {{if .Order.TrackingNumber}}<p>Tracking: {{.Order.TrackingNumber}}{{if .Order.CourierPartner}} via {{.Order.CourierPartner}}{{end}}</p>{{end}}

    <div class="section-title">Payment</div>
    <p>{{.Order.PaymentMethod}}: {{.Order.PaymentStatus}}{{with .Order.TransactionID}} (ref {{.}}){{end}}</p>

    <table class="items">
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="num">Qty</th>
                <th class="num">Rate</th>
                <th class="num">GST %</th>
                <th class="num">Amount</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.ProductName}}</strong>{{if .Variant}}<br><small>{{.Variant}}</small>{{end}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">₹{{money .UnitPrice}}</td>
                <td class="num">{{money .TaxRate}}</td>
                <td class="num">₹{{money .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">₹{{money .Order.Subtotal}}</td></tr>
        {{if .Order.Discount.IsPositive}}<tr><td>Discount</td><td class="num">-₹{{money .Order.Discount}}</td></tr>{{end}}
        <tr><td>CGST</td><td class="num">₹{{money .Order.CGST}}</td></tr>
        <tr><td>SGST</td><td class="num">₹{{money .Order.SGST}}</td></tr>
        <tr><td>Delivery</td><td class="num">₹{{money .Order.DeliveryCharges}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">₹{{money .Order.Total}}</td></tr>
    </table>

    <div class="footer">
        <p>Total GST: ₹{{money .Order.TaxTotal}}</p>
        <p>Thank you for your business!</p>
        {{if .Company.Email}}<p>Questions about this invoice? Contact us at {{.Company.Email}}</p>{{end}}
    </div>
</body>
</html>
`

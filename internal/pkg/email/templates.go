// internal/pkg/email/templates.go
package email

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Order Confirmation - {{.OrderNumber}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 640px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
        <p>Hello {{.CustomerName}},</p>
        <p>Thank you for your order. We have received order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}.</p>

        <table style="width: 100%; border-collapse: collapse;">
            <thead>
                <tr style="background-color: #f0f0f0;">
                    <th style="text-align: left; padding: 8px;">Item</th>
                    <th style="text-align: right; padding: 8px;">Qty</th>
                    <th style="text-align: right; padding: 8px;">Price</th>
                    <th style="text-align: right; padding: 8px;">Total</th>
                </tr>
            </thead>
            <tbody>
            {{range .Items}}
                <tr>
                    <td style="padding: 8px;">{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}<br><small>{{.SKU}}</small></td>
                    <td style="text-align: right; padding: 8px;">{{.Quantity}}</td>
                    <td style="text-align: right; padding: 8px;">₹{{.UnitPrice}}</td>
                    <td style="text-align: right; padding: 8px;">₹{{.LineTotal}}</td>
                </tr>
            {{end}}
            </tbody>
        </table>

        <table style="width: 100%; margin-top: 16px;">
            <tr><td>Subtotal</td><td style="text-align: right;">₹{{.Subtotal}}</td></tr>
            <tr><td>Discount</td><td style="text-align: right;">-₹{{.Discount}}</td></tr>
            <tr><td>CGST</td><td style="text-align: right;">₹{{.CGST}}</td></tr>
            <tr><td>SGST</td><td style="text-align: right;">₹{{.SGST}}</td></tr>
            <tr><td>Delivery</td><td style="text-align: right;">₹{{.DeliveryCharges}}</td></tr>
            <tr><td><strong>Total</strong></td><td style="text-align: right;"><strong>₹{{.Total}}</strong></td></tr>
        </table>

        <h3>Delivery</h3>
        <p>{{.DeliveryAddress}}</p>
        <p>{{.DeliveryOption}}{{if .ScheduledDate}}, scheduled for {{.ScheduledDate}}{{end}}</p>

        <h3>Payment</h3>
        <p>{{.PaymentMethod}} ({{.PaymentStatus}})</p>

        <p>If you have any questions, please contact our support team.</p>
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">© {{.Year}} {{.SiteName}}. All rights reserved.</p>
    </div>
</body>
</html>`

package server

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>solewatch</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 64rem; color: #222; }
h1 { font-size: 1.4rem; }
form { display: flex; gap: .5rem; flex-wrap: wrap; margin-bottom: 1.5rem; }
input { padding: .4rem .6rem; border: 1px solid #bbb; border-radius: 4px; }
input[name=query] { flex: 1; min-width: 16rem; }
button { padding: .4rem 1rem; border: none; border-radius: 4px; background: #1a7f37; color: #fff; cursor: pointer; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5rem; }
th, td { text-align: left; padding: .35rem .6rem; border-bottom: 1px solid #e2e2e2; font-size: .9rem; }
th { background: #f6f6f6; }
.profit { color: #1a7f37; font-weight: 600; }
.muted { color: #888; }
#error { color: #b42318; }
</style>
</head>
<body>
<h1>solewatch</h1>
<form id="search">
<input name="query" placeholder="search, e.g. Jordan 1 Retro High OG" required>
<input name="size" placeholder="size" size="4">
<input name="min_spread" placeholder="min spread" size="8">
<button type="submit">Scan</button>
</form>
<p id="error"></p>
<h2 id="opps-title" hidden>Opportunities</h2>
<table id="opps" hidden>
<thead><tr><th>Style</th><th>Size</th><th>Buy</th><th>Sell</th><th>Spread</th><th>Net est.</th></tr></thead>
<tbody></tbody>
</table>
<h2 id="listings-title" hidden>Listings</h2>
<table id="listings" hidden>
<thead><tr><th>Marketplace</th><th>Name</th><th>Style</th><th>Size</th><th>Ask</th></tr></thead>
<tbody></tbody>
</table>
<script>
const form = document.getElementById("search");
form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const params = new URLSearchParams();
  for (const [k, v] of new FormData(form)) if (v) params.set(k, v);
  document.getElementById("error").textContent = "";
  try {
    const res = await fetch("/api/search?" + params);
    const data = await res.json();
    if (!res.ok) throw new Error(data.error || res.statusText);
    render(data);
  } catch (err) {
    document.getElementById("error").textContent = err.message;
  }
});
function money(v) { return "$" + v.toFixed(2); }
function render(data) {
  const ob = document.querySelector("#opps tbody");
  ob.innerHTML = "";
  for (const o of data.opportunities) {
    const tr = ob.insertRow();
    tr.innerHTML = "<td>" + o.style_code + "</td><td>" + o.size +
      "</td><td>" + o.buy.marketplace + " " + money(o.buy.ask_price) +
      "</td><td>" + o.sell.marketplace + " " + money(o.sell.ask_price) +
      "</td><td>" + o.gross_spread_pct.toFixed(1) + "%</td>" +
      "<td class=profit>" + money(o.est_net_profit) + "</td>";
  }
  document.getElementById("opps-title").hidden = false;
  document.getElementById("opps").hidden = false;
  const lb = document.querySelector("#listings tbody");
  lb.innerHTML = "";
  for (const l of data.listings) {
    const tr = lb.insertRow();
    tr.innerHTML = "<td>" + l.marketplace + "</td><td>" + (l.name || "") +
      "</td><td class=muted>" + (l.style_code || "-") +
      "</td><td>" + (l.size || "-") + "</td><td>" + money(l.ask_price) + "</td>";
  }
  document.getElementById("listings-title").hidden = false;
  document.getElementById("listings").hidden = false;
}
</script>
</body>
</html>
`
